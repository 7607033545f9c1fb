package lexical

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	idx := New(path)
	idx.Rebuild(testChunks())
	if err := idx.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := New(path)
	if err := restored.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	want := idx.Query("Alice age", 5)
	got := restored.Query("Alice age", 5)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("restored index query differs:\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestReloadPicksUpSnapshotWrittenByAnotherIndex(t *testing.T) {
	// The worker process persists after each rebuild; a serving process
	// reloads the same path on notification and must see the new corpus
	// without restarting.
	path := filepath.Join(t.TempDir(), "index.gob")

	writer := New(path)
	writer.Rebuild(testChunks())
	if err := writer.Save(); err != nil {
		t.Fatalf("save initial snapshot: %v", err)
	}

	serving := New(path)
	if err := serving.Load(); err != nil {
		t.Fatalf("load initial snapshot: %v", err)
	}
	if hits := serving.Query("onboarding checklist", 5); len(hits) != 0 && hits[0].LexicalScore > 0 {
		t.Fatalf("unexpected match before ingestion: %+v", hits)
	}

	extended := append(testChunks(), domain.Chunk{
		ID: "d3:0", Text: "onboarding checklist for new hires", DocumentName: "onboarding.txt",
	})
	writer.Rebuild(extended)
	if err := writer.Save(); err != nil {
		t.Fatalf("save extended snapshot: %v", err)
	}

	if err := serving.Load(); err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if serving.Size() != len(extended) {
		t.Fatalf("expected %d chunks after reload, got %d", len(extended), serving.Size())
	}
	hits := serving.Query("onboarding checklist", 5)
	if len(hits) == 0 || hits[0].ID != "d3:0" {
		t.Fatalf("expected reloaded chunk to rank first, got %+v", hits)
	}
}

func TestLoadMissingFileReturnsNotExist(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "missing.gob"))
	if err := idx.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadLegacyPayloadMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	// Unversioned legacy shape: chunk list only, statistics rebuilt on load.
	legacy := persistedIndex{Chunks: testChunks()}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create legacy file: %v", err)
	}
	if err := gob.NewEncoder(f).Encode(legacy); err != nil {
		t.Fatalf("encode legacy payload: %v", err)
	}
	f.Close()

	idx := New(path)
	if err := idx.Load(); err != nil {
		t.Fatalf("load legacy payload: %v", err)
	}
	if idx.Size() != 2 {
		t.Fatalf("expected 2 chunks after migration, got %d", idx.Size())
	}

	// Migration re-saves under the current version.
	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload migrated index: %v", err)
	}
	results := reloaded.Query("Alice", 5)
	if len(results) == 0 || results[0].ID != "d1:0" {
		t.Fatalf("migrated index does not score correctly: %+v", results)
	}
}

func TestLoadCorruptPayloadReportsIndexCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	if err := os.WriteFile(path, []byte("not a gob payload"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	idx := New(path)
	err := idx.Load()
	if !domain.IsKind(err, domain.ErrIndexCorrupt) {
		t.Fatalf("expected ErrIndexCorrupt, got %v", err)
	}
}

func TestLoadUnknownVersionReportsIndexCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	payload := persistedIndex{Version: 99, Chunks: testChunks()}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	f.Close()

	idx := New(path)
	if err := idx.Load(); !domain.IsKind(err, domain.ErrIndexCorrupt) {
		t.Fatalf("expected ErrIndexCorrupt for unknown version, got %v", err)
	}
}

func TestSaveWithoutPathIsNoop(t *testing.T) {
	idx := New("")
	idx.Rebuild(testChunks())
	if err := idx.Save(); err != nil {
		t.Fatalf("expected no-op save, got %v", err)
	}
}
