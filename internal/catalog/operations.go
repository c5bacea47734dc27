package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Ping verifies the catalog is reachable and credentials work.
func (c *Client) Ping(ctx context.Context) error {
	return c.Login(ctx)
}

// GetRepository fetches the configured repository record.
func (c *Client) GetRepository(ctx context.Context) (*Repository, error) {
	var repo Repository
	path := fmt.Sprintf("/repositories/%d", c.repositoryID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// FindResource locates the collection-level record whose identifier matches
// collectionID.
func (c *Client) FindResource(ctx context.Context, collectionID string) (*Resource, error) {
	query := url.Values{}
	query.Add("identifier[]", fmt.Sprintf("[%q]", collectionID))
	path := fmt.Sprintf("/repositories/%d/find_by_id/resources", c.repositoryID)

	var found struct {
		Resources []Ref `json:"resources"`
	}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &found); err != nil {
		return nil, err
	}
	if len(found.Resources) == 0 {
		return nil, fmt.Errorf("%w: resource %q", ErrNotFound, collectionID)
	}

	var resource Resource
	if err := c.do(ctx, http.MethodGet, found.Resources[0].Ref, nil, nil, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// resolveParams asks the catalog to inline the nested records the resolver
// and registrar read.
func resolveParams() url.Values {
	query := url.Values{}
	for _, target := range []string{
		"top_container",
		"top_container::collection",
		"top_container::series",
		"digital_object",
	} {
		query.Add("resolve[]", target)
	}
	return query
}

// FindFolderRecord locates the archival object whose component identifier
// matches componentID and returns it with containers and digital objects
// resolved.
func (c *Client) FindFolderRecord(ctx context.Context, componentID string) (*ArchivalObject, error) {
	query := url.Values{}
	query.Add("component_id[]", componentID)
	path := fmt.Sprintf("/repositories/%d/find_by_id/archival_objects", c.repositoryID)

	var found struct {
		ArchivalObjects []Ref `json:"archival_objects"`
	}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &found); err != nil {
		return nil, err
	}
	if len(found.ArchivalObjects) == 0 {
		return nil, fmt.Errorf("%w: archival object %q", ErrNotFound, componentID)
	}
	return c.GetArchivalObject(ctx, found.ArchivalObjects[0].Ref)
}

// GetArchivalObject fetches an archival object by URI with nested records
// resolved.
func (c *Client) GetArchivalObject(ctx context.Context, uri string) (*ArchivalObject, error) {
	var record ArchivalObject
	if err := c.do(ctx, http.MethodGet, uri, resolveParams(), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateArchivalObject posts the full record back to the catalog.
func (c *Client) UpdateArchivalObject(ctx context.Context, record *ArchivalObject) error {
	return c.do(ctx, http.MethodPost, record.URI, nil, record, nil)
}

// GetDigitalObject fetches a digital object by URI.
func (c *Client) GetDigitalObject(ctx context.Context, uri string) (*DigitalObject, error) {
	var record DigitalObject
	if err := c.do(ctx, http.MethodGet, uri, nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateDigitalObject creates a digital object and returns its URI. A
// uniqueness violation on the digital object identifier surfaces as
// ErrDuplicateID.
func (c *Client) CreateDigitalObject(ctx context.Context, record *DigitalObject) (string, error) {
	path := fmt.Sprintf("/repositories/%d/digital_objects", c.repositoryID)
	var created struct {
		URI string `json:"uri"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, record, &created); err != nil {
		return "", err
	}
	return created.URI, nil
}

// UpdateDigitalObject posts the full digital object back to the catalog.
func (c *Client) UpdateDigitalObject(ctx context.Context, record *DigitalObject) error {
	return c.do(ctx, http.MethodPost, record.URI, nil, record, nil)
}

// CreateDigitalObjectComponent registers one stored derivative and returns
// the new component's URI.
func (c *Client) CreateDigitalObjectComponent(ctx context.Context, record *DigitalObjectComponent) (string, error) {
	path := fmt.Sprintf("/repositories/%d/digital_object_components", c.repositoryID)
	var created struct {
		URI string `json:"uri"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, record, &created); err != nil {
		return "", err
	}
	return created.URI, nil
}
