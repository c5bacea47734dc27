package arrangement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/caltechlibrary/distillery-sub000/internal/arrangement"
	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
)

type stubReader struct {
	records map[string]*catalog.ArchivalObject
	fetches []string
}

func (s *stubReader) GetArchivalObject(_ context.Context, uri string) (*catalog.ArchivalObject, error) {
	s.fetches = append(s.fetches, uri)
	if record, ok := s.records[uri]; ok {
		return record, nil
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, uri)
}

func repo() *catalog.Repository {
	return &catalog.Repository{Name: "University Archives", RepoCode: "archives"}
}

func folderWith(top *catalog.TopContainer, ancestors ...catalog.Ancestor) *catalog.ArchivalObject {
	return &catalog.ArchivalObject{
		URI:           "/repositories/2/archival_objects/55",
		ComponentID:   "ABC_001_02",
		Title:         "Letters",
		DisplayString: "Letters, 1901",
		Instances: []catalog.Instance{
			{InstanceType: "mixed_materials", SubContainer: &catalog.SubContainer{TopContainer: top}},
		},
		Ancestors: ancestors,
	}
}

func TestResolveCollectionOnly(t *testing.T) {
	reader := &stubReader{}
	resolver := arrangement.NewResolver(reader, repo())

	folder := folderWith(&catalog.TopContainer{
		Collection: []catalog.ContainerLink{{Identifier: "ABC", DisplayString: "ABC Papers"}},
	})

	arr, err := resolver.Resolve(context.Background(), folder)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if arr.CollectionID != "ABC" || arr.CollectionDisplay != "ABC Papers" {
		t.Fatalf("collection not resolved: %+v", arr)
	}
	if arr.SeriesID != "" || arr.SubseriesID != "" {
		t.Fatalf("unexpected series data: %+v", arr)
	}
	if arr.RepositoryCode != "archives" {
		t.Fatalf("repository not carried: %+v", arr)
	}
	if len(reader.fetches) != 0 {
		t.Fatalf("collection-only resolution should not hit the catalog, fetched %v", reader.fetches)
	}
}

func TestResolveWithSeriesAndSubseries(t *testing.T) {
	reader := &stubReader{records: map[string]*catalog.ArchivalObject{
		"/repositories/2/archival_objects/40": {
			URI:           "/repositories/2/archival_objects/40",
			ComponentID:   "2",
			DisplayString: "Outgoing correspondence",
		},
	}}
	resolver := arrangement.NewResolver(reader, repo())

	folder := folderWith(&catalog.TopContainer{
		Collection: []catalog.ContainerLink{{Identifier: "ABC", DisplayString: "ABC Papers"}},
		Series:     []catalog.ContainerLink{{Identifier: "5", DisplayString: "Correspondence"}},
	},
		catalog.Ancestor{Ref: "/repositories/2/archival_objects/40", Level: "subseries"},
		catalog.Ancestor{Ref: "/repositories/2/archival_objects/30", Level: "series"},
	)

	arr, err := resolver.Resolve(context.Background(), folder)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if arr.SeriesID != "5" || arr.SeriesDisplay != "Correspondence" {
		t.Fatalf("series not resolved: %+v", arr)
	}
	if arr.SubseriesID != "2" || arr.SubseriesDisplay != "Outgoing correspondence" {
		t.Fatalf("subseries not resolved: %+v", arr)
	}
	if len(reader.fetches) != 1 {
		t.Fatalf("expected exactly one extra catalog read, got %v", reader.fetches)
	}
}

func TestResolveMissingCollection(t *testing.T) {
	resolver := arrangement.NewResolver(&stubReader{}, repo())

	folder := folderWith(&catalog.TopContainer{})
	_, err := resolver.Resolve(context.Background(), folder)
	if !errors.Is(err, arrangement.ErrMissingCollectionData) {
		t.Fatalf("expected ErrMissingCollectionData, got %v", err)
	}
}

func TestResolveUnresolvedSeries(t *testing.T) {
	resolver := arrangement.NewResolver(&stubReader{}, repo())

	folder := folderWith(&catalog.TopContainer{
		Collection: []catalog.ContainerLink{{Identifier: "ABC", DisplayString: "ABC Papers"}},
		Series:     []catalog.ContainerLink{{Identifier: "", DisplayString: ""}},
	})
	_, err := resolver.Resolve(context.Background(), folder)
	if !errors.Is(err, arrangement.ErrMissingSeriesData) {
		t.Fatalf("expected ErrMissingSeriesData, got %v", err)
	}
}

func TestResolveSubseriesWithoutComponentID(t *testing.T) {
	reader := &stubReader{records: map[string]*catalog.ArchivalObject{
		"/repositories/2/archival_objects/40": {
			URI:           "/repositories/2/archival_objects/40",
			DisplayString: "Unnamed subseries",
		},
	}}
	resolver := arrangement.NewResolver(reader, repo())

	folder := folderWith(&catalog.TopContainer{
		Collection: []catalog.ContainerLink{{Identifier: "ABC", DisplayString: "ABC Papers"}},
		Series:     []catalog.ContainerLink{{Identifier: "5", DisplayString: "Correspondence"}},
	}, catalog.Ancestor{Ref: "/repositories/2/archival_objects/40", Level: "subseries"})

	_, err := resolver.Resolve(context.Background(), folder)
	if !errors.Is(err, arrangement.ErrSubseriesMissingComponentID) {
		t.Fatalf("expected ErrSubseriesMissingComponentID, got %v", err)
	}
}

func TestHierarchyProjection(t *testing.T) {
	arr := &arrangement.Arrangement{
		CollectionID:  "ABC",
		SeriesID:      "5",
		SeriesDisplay: "Correspondence",
		FolderID:      "ABC_001_02",
		FolderDisplay: "Letters, 1901",
	}
	h := arr.Hierarchy()
	if h.CollectionID != "ABC" || h.SeriesID != "5" || h.FolderID != "ABC_001_02" {
		t.Fatalf("hierarchy projection wrong: %+v", h)
	}
}
