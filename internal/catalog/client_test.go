package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *catalog.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := catalog.NewClientWithDoer(server.URL, "ingest", "secret", 2, server.Client())
	return server, client
}

func loginAware(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/ingest/login" {
			if r.Method != http.MethodPost {
				t.Errorf("login used method %s", r.Method)
			}
			json.NewEncoder(w).Encode(map[string]string{"session": "token-1"})
			return
		}
		if got := r.Header.Get("X-ArchivesSpace-Session"); got != "token-1" {
			t.Errorf("missing session header, got %q", got)
		}
		next(w, r)
	}
}

func TestLoginStoresSession(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uri":"/repositories/2","name":"Archives","repo_code":"archives"}`))
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	repo, err := client.GetRepository(context.Background())
	if err != nil {
		t.Fatalf("GetRepository: %v", err)
	}
	if repo.RepoCode != "archives" {
		t.Fatalf("unexpected repository: %+v", repo)
	}
}

func TestFindFolderRecordResolvesHit(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repositories/2/find_by_id/archival_objects":
			if got := r.URL.Query().Get("component_id[]"); got != "ABC_001_02" {
				t.Errorf("unexpected component query %q", got)
			}
			w.Write([]byte(`{"archival_objects":[{"ref":"/repositories/2/archival_objects/55"}]}`))
		case "/repositories/2/archival_objects/55":
			w.Write([]byte(`{"uri":"/repositories/2/archival_objects/55","component_id":"ABC_001_02","display_string":"Letters","instances":[]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	record, err := client.FindFolderRecord(context.Background(), "ABC_001_02")
	if err != nil {
		t.Fatalf("FindFolderRecord: %v", err)
	}
	if record.ComponentID != "ABC_001_02" || record.DisplayString != "Letters" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestFindFolderRecordMiss(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"archival_objects":[]}`))
	}))

	_, err := client.FindFolderRecord(context.Background(), "ABC_999_99")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDigitalObjectDuplicateID(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"digital_object_id":["Must be unique"]}}`))
	}))

	_, err := client.CreateDigitalObject(context.Background(), &catalog.DigitalObject{DigitalObjectID: "ABC_001_02"})
	if !errors.Is(err, catalog.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))

	_, err := client.GetDigitalObject(context.Background(), "/repositories/2/digital_objects/9")
	var statusErr *catalog.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", statusErr.StatusCode)
	}
}

func TestCreateDigitalObjectComponentReturnsURI(t *testing.T) {
	_, client := newTestServer(t, loginAware(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repositories/2/digital_object_components" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload catalog.DigitalObjectComponent
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Label != "Image 03" {
			t.Errorf("unexpected label %q", payload.Label)
		}
		w.Write([]byte(`{"uri":"/repositories/2/digital_object_components/7"}`))
	}))

	uri, err := client.CreateDigitalObjectComponent(context.Background(), &catalog.DigitalObjectComponent{
		ComponentID:   "abcd-efgh",
		Label:         "Image 03",
		DigitalObject: &catalog.Ref{Ref: "/repositories/2/digital_objects/1"},
	})
	if err != nil {
		t.Fatalf("CreateDigitalObjectComponent: %v", err)
	}
	if uri != "/repositories/2/digital_object_components/7" {
		t.Fatalf("unexpected uri %q", uri)
	}
}
