package catalog

// Ref is a reference to another catalog record by URI.
type Ref struct {
	Ref string `json:"ref"`
}

// ContainerLink is a resolved hierarchy entry carried on a top container.
type ContainerLink struct {
	Identifier    string `json:"identifier"`
	DisplayString string `json:"display_string"`
	Ref           string `json:"ref,omitempty"`
}

// TopContainer is the resolved physical container a folder sits in. The
// catalog resolves the container's position in the collection hierarchy onto
// it as collection/series link arrays.
type TopContainer struct {
	URI        string          `json:"uri,omitempty"`
	Indicator  string          `json:"indicator,omitempty"`
	Collection []ContainerLink `json:"collection,omitempty"`
	Series     []ContainerLink `json:"series,omitempty"`
}

// SubContainer nests a folder under its top container.
type SubContainer struct {
	TopContainer *TopContainer `json:"top_container,omitempty"`
}

// Instance attaches either a physical container or a digital object to an
// archival object.
type Instance struct {
	InstanceType  string        `json:"instance_type"`
	SubContainer  *SubContainer `json:"sub_container,omitempty"`
	DigitalObject *Ref          `json:"digital_object,omitempty"`
}

// Ancestor is one entry in an archival object's ancestor chain, nearest
// first.
type Ancestor struct {
	Ref   string `json:"ref"`
	Level string `json:"level"`
}

// Date is a descriptive date record.
type Date struct {
	Expression string `json:"expression,omitempty"`
	Begin      string `json:"begin,omitempty"`
	End        string `json:"end,omitempty"`
	DateType   string `json:"date_type,omitempty"`
}

// Extent is a descriptive extent record.
type Extent struct {
	Number           string `json:"number,omitempty"`
	ExtentType       string `json:"extent_type,omitempty"`
	Portion          string `json:"portion,omitempty"`
	ContainerSummary string `json:"container_summary,omitempty"`
}

// ArchivalObject is the catalog's archival-description record for a folder
// (or any other level of description).
type ArchivalObject struct {
	URI           string     `json:"uri,omitempty"`
	Title         string     `json:"title,omitempty"`
	DisplayString string     `json:"display_string,omitempty"`
	ComponentID   string     `json:"component_id,omitempty"`
	Level         string     `json:"level,omitempty"`
	RefID         string     `json:"ref_id,omitempty"`
	Resource      *Ref       `json:"resource,omitempty"`
	Instances     []Instance `json:"instances"`
	Ancestors     []Ancestor `json:"ancestors,omitempty"`
	Dates         []Date     `json:"dates,omitempty"`
	Extents       []Extent   `json:"extents,omitempty"`
	LockVersion   int        `json:"lock_version"`
}

// DigitalObjectInstances returns the digital-object instances linked to the
// record.
func (a *ArchivalObject) DigitalObjectInstances() []Ref {
	var refs []Ref
	for _, instance := range a.Instances {
		if instance.InstanceType == "digital_object" && instance.DigitalObject != nil {
			refs = append(refs, *instance.DigitalObject)
		}
	}
	return refs
}

// FileVersion describes one stored file attached to a digital object
// component.
type FileVersion struct {
	FileURI            string `json:"file_uri"`
	UseStatement       string `json:"use_statement,omitempty"`
	Caption            string `json:"caption,omitempty"`
	FileFormatName     string `json:"file_format_name,omitempty"`
	FileFormatVersion  string `json:"file_format_version,omitempty"`
	FileSizeBytes      int64  `json:"file_size_bytes,omitempty"`
	Checksum           string `json:"checksum,omitempty"`
	ChecksumMethod     string `json:"checksum_method,omitempty"`
	Publish            bool   `json:"publish"`
}

// DigitalObject is the catalog entity representing digitized content for a
// folder.
type DigitalObject struct {
	URI             string        `json:"uri,omitempty"`
	DigitalObjectID string        `json:"digital_object_id"`
	Title           string        `json:"title"`
	Publish         bool          `json:"publish"`
	FileVersions    []FileVersion `json:"file_versions"`
	LockVersion     int           `json:"lock_version"`
}

// DigitalObjectComponent registers one stored derivative under a digital
// object.
type DigitalObjectComponent struct {
	URI           string        `json:"uri,omitempty"`
	ComponentID   string        `json:"component_id"`
	Label         string        `json:"label"`
	DigitalObject *Ref          `json:"digital_object"`
	FileVersions  []FileVersion `json:"file_versions"`
}

// Resource is the collection-level description record.
type Resource struct {
	URI        string `json:"uri,omitempty"`
	Title      string `json:"title,omitempty"`
	Identifier string `json:"id_0,omitempty"`
	EADID      string `json:"ead_id,omitempty"`
}

// Repository identifies the owning repository.
type Repository struct {
	URI      string `json:"uri,omitempty"`
	Name     string `json:"name,omitempty"`
	RepoCode string `json:"repo_code,omitempty"`
}
