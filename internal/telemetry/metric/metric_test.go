package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/shm"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(body)
}

func assertContains(t *testing.T, body string, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if !strings.Contains(body, line) {
			t.Errorf("scrape missing %q", line)
		}
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	if r.Registerer() == nil {
		t.Fatal("Registerer() returned nil")
	}

	body := scrape(t, r)
	assertContains(t, body, "go_goroutines")
}

func TestAdapter(t *testing.T) {
	r := NewRegistry()
	a := NewAdapter(r.Registerer(), "shmap", "store", nil)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Insert(100)
	a.Insert(28)
	a.Remove(shmap.RemoveExpired)
	a.Remove(shmap.RemoveOrphanLock)
	a.Remove(shmap.RemoveOrphanLock)
	a.Sweep(3*time.Millisecond, 7)

	body := scrape(t, r)
	assertContains(t, body,
		"shmap_store_hits_total 2",
		"shmap_store_misses_total 1",
		"shmap_store_inserts_total 2",
		"shmap_store_insert_bytes_total 128",
		`shmap_store_removals_total{reason="expired"} 1`,
		`shmap_store_removals_total{reason="orphan_lock"} 2`,
		"shmap_store_sweeps_total 1",
		"shmap_store_sweep_duration_seconds_count 1",
		"shmap_store_live_keys 7",
	)
}

func TestAdapter_ConstLabels(t *testing.T) {
	r := NewRegistry()
	a := NewAdapter(r.Registerer(), "shmap", "", map[string]string{"instance": "a"})
	a.Hit()

	assertContains(t, scrape(t, r), `shmap_hits_total{instance="a"} 1`)
}

func TestAdapter_DuplicateRegistrationPanics(t *testing.T) {
	r := NewRegistry()
	NewAdapter(r.Registerer(), "shmap", "store", nil)

	defer func() {
		if recover() == nil {
			t.Error("second registration should panic")
		}
	}()
	NewAdapter(r.Registerer(), "shmap", "store", nil)
}

func TestCollector(t *testing.T) {
	dir, err := shm.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	ns := keyspace.New("app")
	name := ns.Sanitize("k")
	foreign := keyspace.New("other").Sanitize("k")

	files := map[string]int{
		name:                        10,
		keyspace.MetadataName(name): 5,
		keyspace.LockName(name):     0,
		"app.unrelated":             99,
		foreign:                     42,
	}
	for f, n := range files {
		if err := os.WriteFile(filepath.Join(dir.Root(), f), make([]byte, n), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	r := NewRegistry()
	r.Registerer().MustRegister(NewCollector(dir, "app", "shmap", ""))

	body := scrape(t, r)
	assertContains(t, body,
		`shmap_segments{kind="value",namespace="app"} 1`,
		`shmap_segments{kind="metadata",namespace="app"} 1`,
		`shmap_segments{kind="lock",namespace="app"} 1`,
		`shmap_segment_bytes{kind="value",namespace="app"} 10`,
		`shmap_segment_bytes{kind="metadata",namespace="app"} 5`,
		`shmap_scrape_error{namespace="app"} 0`,
	)
}

func TestCollector_ListFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "segments")
	dir, err := shm.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	r := NewRegistry()
	r.Registerer().MustRegister(NewCollector(dir, "", "shmap", ""))

	assertContains(t, scrape(t, r), `shmap_scrape_error{namespace="shmap"} 1`)
}
