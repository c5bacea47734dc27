package arrangement

import (
	"context"
	"errors"
	"fmt"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/identifier"
)

// Typed failures a folder resolution can produce. All are folder-scoped: the
// folder is skipped and the run continues.
var (
	ErrMissingCollectionData       = errors.New("no collection data found among container instances")
	ErrMissingSeriesData           = errors.New("series container present but unresolved")
	ErrSubseriesMissingComponentID = errors.New("subseries ancestor lacks a component identifier")
)

// Arrangement is a folder's resolved position in the collection hierarchy.
// Collection is mandatory; series and subseries are optional. Instances are
// recomputed every run and never persisted.
type Arrangement struct {
	RepositoryName    string
	RepositoryCode    string
	CollectionID      string
	CollectionDisplay string
	SeriesID          string
	SeriesDisplay     string
	SubseriesID       string
	SubseriesDisplay  string
	FolderID          string
	FolderDisplay     string
	FolderTitle       string
}

// Hierarchy projects the arrangement into the key-derivation inputs.
func (a *Arrangement) Hierarchy() identifier.Hierarchy {
	return identifier.Hierarchy{
		CollectionID:   a.CollectionID,
		SeriesID:       a.SeriesID,
		SeriesTitle:    a.SeriesDisplay,
		SubseriesID:    a.SubseriesID,
		SubseriesTitle: a.SubseriesDisplay,
		FolderID:       a.FolderID,
		FolderTitle:    a.FolderDisplay,
	}
}

// CatalogReader is the slice of the catalog client the resolver needs.
type CatalogReader interface {
	GetArchivalObject(ctx context.Context, uri string) (*catalog.ArchivalObject, error)
}

// Resolver builds arrangements from folder records. Each resolution issues at
// most one extra catalog read, for the subseries ancestor.
type Resolver struct {
	catalog    CatalogReader
	repository catalog.Repository
}

// NewResolver constructs a resolver bound to a repository.
func NewResolver(reader CatalogReader, repository *catalog.Repository) *Resolver {
	r := &Resolver{catalog: reader}
	if repository != nil {
		r.repository = *repository
	}
	return r
}

// Resolve walks the folder record's container instances for collection and
// series identification, then the ancestor chain for a subseries.
func (r *Resolver) Resolve(ctx context.Context, folder *catalog.ArchivalObject) (*Arrangement, error) {
	arr := &Arrangement{
		RepositoryName: r.repository.Name,
		RepositoryCode: r.repository.RepoCode,
		FolderID:       folder.ComponentID,
		FolderDisplay:  folder.DisplayString,
		FolderTitle:    folder.Title,
	}

	seriesPresent := false
	for _, instance := range folder.Instances {
		if instance.InstanceType == "digital_object" || instance.SubContainer == nil {
			continue
		}
		top := instance.SubContainer.TopContainer
		if top == nil {
			continue
		}
		if arr.CollectionID == "" && len(top.Collection) > 0 {
			arr.CollectionID = top.Collection[0].Identifier
			arr.CollectionDisplay = top.Collection[0].DisplayString
		}
		if !seriesPresent && len(top.Series) > 0 {
			seriesPresent = true
			arr.SeriesID = top.Series[0].Identifier
			arr.SeriesDisplay = top.Series[0].DisplayString
		}
	}

	if arr.CollectionID == "" {
		return nil, fmt.Errorf("%w: folder %q", ErrMissingCollectionData, folder.ComponentID)
	}
	if seriesPresent && (arr.SeriesID == "" || arr.SeriesDisplay == "") {
		return nil, fmt.Errorf("%w: folder %q", ErrMissingSeriesData, folder.ComponentID)
	}

	if seriesPresent {
		if err := r.resolveSubseries(ctx, folder, arr); err != nil {
			return nil, err
		}
	}

	return arr, nil
}

func (r *Resolver) resolveSubseries(ctx context.Context, folder *catalog.ArchivalObject, arr *Arrangement) error {
	for _, ancestor := range folder.Ancestors {
		if ancestor.Level != "subseries" {
			continue
		}
		record, err := r.catalog.GetArchivalObject(ctx, ancestor.Ref)
		if err != nil {
			return fmt.Errorf("fetch subseries %s: %w", ancestor.Ref, err)
		}
		if record.ComponentID == "" {
			return fmt.Errorf("%w: %s", ErrSubseriesMissingComponentID, ancestor.Ref)
		}
		arr.SubseriesID = record.ComponentID
		arr.SubseriesDisplay = record.DisplayString
		return nil
	}
	return nil
}
