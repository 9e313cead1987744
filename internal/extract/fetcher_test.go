package extract

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akorchak/metapull/internal/atlan"
	"github.com/akorchak/metapull/pkg/config"
)

const testAuth = "Bearer test-token"

// fixtureServer answers connection searches with connectionsJSON and
// database searches with the entry of databases whose key occurs in the
// request body. Keys listed in fail get a 500 instead.
type fixtureServer struct {
	connectionsJSON string
	databases       map[string]string
	fail            map[string]bool

	dbCalls []string
}

func (f *fixtureServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != testAuth {
			t.Errorf("unexpected Authorization header: %q", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if strings.Contains(string(body), `"Connection"`) {
			io.WriteString(w, f.connectionsJSON)
			return
		}

		for key, response := range f.databases {
			if strings.Contains(string(body), `"`+key+`"`) {
				f.dbCalls = append(f.dbCalls, key)
				if f.fail[key] {
					w.WriteHeader(http.StatusInternalServerError)
					io.WriteString(w, `{"error":"boom"}`)
					return
				}
				io.WriteString(w, response)
				return
			}
		}
		io.WriteString(w, `{"entities":[]}`)
	}
}

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	client := atlan.NewClient(cfg.Timeout, 100)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFetcher(client, cfg, log)
}

const twoConnectionsJSON = `{
  "entities": [
    "junk-entity",
    {
      "typeName": "Connection",
      "attributes": {"name": "lake", "qualifiedName": "c/1", "connectorName": "databricks"},
      "createdBy": "svc"
    },
    {
      "typeName": "Connection",
      "attributes": {"name": "viz", "qualifiedName": "c/2", "connectorName": "tableau"},
      "createdBy": "svc"
    }
  ]
}`

func TestFetcherTwoStepFlow(t *testing.T) {
	fixture := &fixtureServer{
		connectionsJSON: twoConnectionsJSON,
		databases: map[string]string{
			"c/1": `{"entities":[
				{"typeName":"Database","attributes":{"qualifiedName":"c/1/db1","name":"db1"}},
				{"typeName":"Database","attributes":{"qualifiedName":"c/1/db2","name":"db2"}}
			]}`,
			"c/2": `{"entities":[
				{"typeName":"Database","attributes":{"qualifiedName":"c/2/db1","name":"reports"}}
			]}`,
		},
	}
	srv := httptest.NewServer(fixture.handler(t))
	defer srv.Close()

	fetcher := testFetcher(t)
	connections, databases, err := fetcher.Fetch(context.Background(), srv.URL, "test-token")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(connections) != 2 {
		t.Fatalf("expected 2 connections (malformed entity skipped), got %d", len(connections))
	}
	if len(databases) != 3 {
		t.Fatalf("expected 3 databases, got %d", len(databases))
	}
	for _, db := range databases[:2] {
		if db.ConnectionQualifiedName != "c/1" {
			t.Fatalf("database %q stamped with %q, want c/1", db.Name, db.ConnectionQualifiedName)
		}
	}
	if databases[2].ConnectionQualifiedName != "c/2" {
		t.Fatalf("database %q stamped with %q, want c/2", databases[2].Name, databases[2].ConnectionQualifiedName)
	}
	if len(fixture.dbCalls) != 2 || fixture.dbCalls[0] != "c/1" || fixture.dbCalls[1] != "c/2" {
		t.Fatalf("unexpected database fetch order: %v", fixture.dbCalls)
	}
}

func TestFetcherIsolatesPerConnectionFailures(t *testing.T) {
	fixture := &fixtureServer{
		connectionsJSON: twoConnectionsJSON,
		databases: map[string]string{
			"c/1": "",
			"c/2": `{"entities":[{"typeName":"Database","attributes":{"name":"reports"}}]}`,
		},
		fail: map[string]bool{"c/1": true},
	}
	srv := httptest.NewServer(fixture.handler(t))
	defer srv.Close()

	fetcher := testFetcher(t)
	connections, databases, err := fetcher.Fetch(context.Background(), srv.URL, "test-token")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(connections))
	}
	if len(databases) != 1 || databases[0].ConnectionQualifiedName != "c/2" {
		t.Fatalf("expected only c/2 databases after c/1 failure, got %+v", databases)
	}
}

func TestFetcherSkipsConnectionsWithoutQualifiedName(t *testing.T) {
	fixture := &fixtureServer{
		connectionsJSON: `{
		  "entities": [
		    {"attributes": {"name": "nameless", "connectorName": "mysql"}},
		    {"attributes": {"name": "ok", "qualifiedName": "c/9", "connectorName": "mysql"}}
		  ]
		}`,
		databases: map[string]string{
			"c/9": `{"entities":[{"typeName":"Database","attributes":{"name":"db9"}}]}`,
		},
	}
	srv := httptest.NewServer(fixture.handler(t))
	defer srv.Close()

	fetcher := testFetcher(t)
	connections, databases, err := fetcher.Fetch(context.Background(), srv.URL, "test-token")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(connections) != 2 {
		t.Fatalf("connection without qualified name must still be collected, got %d", len(connections))
	}
	if len(fixture.dbCalls) != 1 || fixture.dbCalls[0] != "c/9" {
		t.Fatalf("expected exactly one database fetch for c/9, got %v", fixture.dbCalls)
	}
	if len(databases) != 1 {
		t.Fatalf("expected 1 database, got %d", len(databases))
	}
}

func TestFetcherConnectionsFailureYieldsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fetcher := testFetcher(t)
	connections, databases, err := fetcher.Fetch(context.Background(), srv.URL, "test-token")
	if err != nil {
		t.Fatalf("transport failure must not surface as an error, got %v", err)
	}
	if len(connections) != 0 || len(databases) != 0 {
		t.Fatalf("expected empty result, got %d connections, %d databases", len(connections), len(databases))
	}
}

func TestFetcherTreatsMissingEntitiesAsZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"approximateCount": 0}`)
	}))
	defer srv.Close()

	fetcher := testFetcher(t)
	connections, _, err := fetcher.Fetch(context.Background(), srv.URL, "test-token")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(connections) != 0 {
		t.Fatalf("expected zero connections, got %d", len(connections))
	}
}
