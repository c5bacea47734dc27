package registrar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/derivative"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
)

// Typed failures surfaced while linking folders and derivatives into the
// catalog.
var (
	ErrMultipleDigitalObjects   = errors.New("folder has multiple digital objects")
	ErrMissingDigitalObject     = errors.New("folder has no digital object")
	ErrDuplicateDigitalObjectID = errors.New("digital object identifier already in use")
	ErrRegistrationFailed       = errors.New("component registration failed")
)

// CatalogAPI is the slice of catalog operations the registrar needs.
type CatalogAPI interface {
	GetArchivalObject(ctx context.Context, uri string) (*catalog.ArchivalObject, error)
	UpdateArchivalObject(ctx context.Context, record *catalog.ArchivalObject) error
	GetDigitalObject(ctx context.Context, uri string) (*catalog.DigitalObject, error)
	CreateDigitalObject(ctx context.Context, record *catalog.DigitalObject) (string, error)
	UpdateDigitalObject(ctx context.Context, record *catalog.DigitalObject) error
	CreateDigitalObjectComponent(ctx context.Context, record *catalog.DigitalObjectComponent) (string, error)
}

// ComponentRequest carries everything needed to register one stored
// derivative under a folder's digital object.
type ComponentRequest struct {
	Folder      *catalog.ArchivalObject
	ComponentID string
	Sequence    string
	ObjectURI   string
	Artifact    *derivative.Artifact
}

// Registrar owns idempotent digital-object creation, identifier repair, and
// per-file component registration.
type Registrar struct {
	catalog      CatalogAPI
	useStatement string
	logger       *slog.Logger
}

// New constructs a registrar. useStatement is stamped onto every registered
// file version.
func New(api CatalogAPI, useStatement string, logger *slog.Logger) *Registrar {
	return &Registrar{
		catalog:      api,
		useStatement: useStatement,
		logger:       logging.NewComponentLogger(logger, "registrar"),
	}
}

// EnsureDigitalObject guarantees the folder record carries exactly one
// digital-object instance. Two or more is an arrangement ambiguity this
// pipeline cannot resolve; zero triggers creation of a digital object whose
// identifier equals the folder's component identifier. Creating the digital
// object leaves it unattached, so the folder's instance list is updated to
// reference it before the re-fetch that makes the link visible on the
// returned record.
func (r *Registrar) EnsureDigitalObject(ctx context.Context, folder *catalog.ArchivalObject) (*catalog.ArchivalObject, error) {
	links := folder.DigitalObjectInstances()
	switch {
	case len(links) > 1:
		return nil, fmt.Errorf("%w: folder %s has %d", ErrMultipleDigitalObjects, folder.ComponentID, len(links))
	case len(links) == 1:
		return folder, nil
	}

	record := &catalog.DigitalObject{
		DigitalObjectID: folder.ComponentID,
		Title:           folder.DisplayString,
	}
	if record.Title == "" {
		record.Title = folder.Title
	}
	uri, err := r.catalog.CreateDigitalObject(ctx, record)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateID) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDigitalObjectID, folder.ComponentID)
		}
		return nil, fmt.Errorf("create digital object for folder %s: %w", folder.ComponentID, err)
	}
	r.logger.Info("digital object created",
		logging.String(logging.FieldFolder, folder.ComponentID),
		logging.String("uri", uri),
	)

	folder.Instances = append(folder.Instances, catalog.Instance{
		InstanceType:  "digital_object",
		DigitalObject: &catalog.Ref{Ref: uri},
	})
	if err := r.catalog.UpdateArchivalObject(ctx, folder); err != nil {
		return nil, fmt.Errorf("link digital object to folder %s: %w", folder.ComponentID, err)
	}

	refreshed, err := r.catalog.GetArchivalObject(ctx, folder.URI)
	if err != nil {
		return nil, fmt.Errorf("refresh folder %s after digital object creation: %w", folder.ComponentID, err)
	}
	return refreshed, nil
}

// EnsureDigitalObjectIdentifier repairs drift between the linked digital
// object's identifier and the folder's component identifier. Upstream catalog
// edits cause this routinely, so a mismatch is fixed in place rather than
// treated as a failure.
func (r *Registrar) EnsureDigitalObjectIdentifier(ctx context.Context, folder *catalog.ArchivalObject) (*catalog.ArchivalObject, error) {
	links := folder.DigitalObjectInstances()
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: folder %s", ErrMissingDigitalObject, folder.ComponentID)
	}

	record, err := r.catalog.GetDigitalObject(ctx, links[0].Ref)
	if err != nil {
		return nil, fmt.Errorf("fetch digital object for folder %s: %w", folder.ComponentID, err)
	}
	if record.DigitalObjectID == folder.ComponentID {
		return folder, nil
	}

	r.logger.Warn("repairing digital object identifier",
		logging.String(logging.FieldFolder, folder.ComponentID),
		logging.String("found", record.DigitalObjectID),
	)
	record.DigitalObjectID = folder.ComponentID
	if err := r.catalog.UpdateDigitalObject(ctx, record); err != nil {
		return nil, fmt.Errorf("repair digital object identifier for folder %s: %w", folder.ComponentID, err)
	}

	refreshed, err := r.catalog.GetArchivalObject(ctx, folder.URI)
	if err != nil {
		return nil, fmt.Errorf("refresh folder %s after identifier repair: %w", folder.ComponentID, err)
	}
	return refreshed, nil
}

// RegisterComponent posts the catalog record for one uploaded derivative and
// returns the new component's URI. The uploaded object is never rolled back
// on failure; the error names the file so an operator can clean up.
func (r *Registrar) RegisterComponent(ctx context.Context, req ComponentRequest) (string, error) {
	links := req.Folder.DigitalObjectInstances()
	if len(links) == 0 {
		return "", fmt.Errorf("%w: folder %s", ErrMissingDigitalObject, req.Folder.ComponentID)
	}

	artifact := req.Artifact
	component := &catalog.DigitalObjectComponent{
		ComponentID:   req.ComponentID,
		Label:         "Image " + req.Sequence,
		DigitalObject: &catalog.Ref{Ref: links[0].Ref},
		FileVersions: []catalog.FileVersion{{
			FileURI:           req.ObjectURI,
			UseStatement:      r.useStatement,
			Caption:           derivative.Caption(artifact.Width, artifact.Height, artifact.Transformation, artifact.Quantization),
			FileFormatName:    "JPEG 2000",
			FileFormatVersion: derivative.FormatVersion(artifact.Standard, artifact.Transformation, artifact.Quantization),
			FileSizeBytes:     artifact.Size,
			Checksum:          artifact.ChecksumHex(),
			ChecksumMethod:    "md5",
		}},
	}

	uri, err := r.catalog.CreateDigitalObjectComponent(ctx, component)
	if err != nil {
		return "", fmt.Errorf("%w: image %s: %w", ErrRegistrationFailed, req.ComponentID, err)
	}
	r.logger.Info("component registered",
		logging.String(logging.FieldFolder, req.Folder.ComponentID),
		logging.String(logging.FieldImage, req.ComponentID),
		logging.String("uri", uri),
	)
	return uri, nil
}
