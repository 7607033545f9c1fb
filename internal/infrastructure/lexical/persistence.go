package lexical

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

// snapshotVersion is the single on-disk schema: tokenized corpus plus the
// full ordered chunk list it was built from, persisted as one unit. The
// scoring statistics are recomputed on load, which keeps the payload small
// and the schema stable.
const snapshotVersion = 2

type persistedIndex struct {
	Version int
	Chunks  []domain.Chunk
	Tokens  [][]string
}

// Save writes the current snapshot to the configured path atomically
// (temp file + rename). A nil snapshot or empty path is a no-op.
func (idx *Index) Save() error {
	if idx.path == "" {
		return nil
	}
	snap := idx.snap.Load()
	if snap == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.path), "index-*.gob")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	payload := persistedIndex{
		Version: snapshotVersion,
		Chunks:  snap.chunks,
		Tokens:  snap.tokens,
	}
	if err := gob.NewEncoder(tmp).Encode(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), idx.path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load restores a persisted snapshot. The current version loads directly;
// the one legacy shape still in the wild (unversioned tokens+chunks) is
// migrated by re-tokenizing the chunk text and re-saving under the current
// version. Anything else is reported as a corrupt index.
func (idx *Index) Load() error {
	if idx.path == "" {
		return nil
	}
	f, err := os.Open(idx.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var payload persistedIndex
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return domain.WrapError(domain.ErrIndexCorrupt, "decode index", err)
	}

	switch payload.Version {
	case snapshotVersion:
		if len(payload.Chunks) != len(payload.Tokens) {
			return domain.WrapError(domain.ErrIndexCorrupt, "load index",
				fmt.Errorf("chunks/tokens mismatch: %d/%d", len(payload.Chunks), len(payload.Tokens)))
		}
		idx.snap.Store(buildSnapshot(payload.Chunks, payload.Tokens))
		return nil
	case 0, 1:
		// Legacy payload: migrate once instead of branching load logic
		// forever.
		if len(payload.Chunks) == 0 {
			return domain.WrapError(domain.ErrIndexCorrupt, "load index",
				errors.New("legacy payload without chunk list"))
		}
		idx.Rebuild(payload.Chunks)
		return idx.Save()
	default:
		return domain.WrapError(domain.ErrIndexCorrupt, "load index",
			fmt.Errorf("unknown index version %d", payload.Version))
	}
}
