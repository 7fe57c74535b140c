// Package store owns the flat artifact directory: final-file naming, temp
// chunk files, and reconciliation of disk contents against the caller's set
// of live artifacts. There is no index file; membership is directory listing
// plus the in-memory active set, and nothing survives a restart on purpose.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voxpress/voxpress/internal/logging"
)

// chunkPattern names per-request temp files. The suffix keeps them outside
// the final-artifact naming scheme, so a concurrent reconcile can never
// delete another request's in-flight chunks.
const chunkPattern = "chunk_*.tmp.mp3"

const chunkSuffix = ".tmp.mp3"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("artifact directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// FinalPath returns the destination for one assembled artifact. The unix
// timestamp keeps repeated requests for the same source and kind from
// colliding; the pipeline always regenerates, reuse is a caller policy.
func (s *Store) FinalPath(sourceID, kind, voiceTag string) string {
	name := fmt.Sprintf("%s_%s_%s_%d.mp3", Sanitize(sourceID), kind, Sanitize(voiceTag), time.Now().Unix())
	return filepath.Join(s.dir, name)
}

// CreateChunkFile creates an ephemeral file for one synthesized chunk.
// Callers own deletion; these files never outlive their request.
func (s *Store) CreateChunkFile() (*os.File, error) {
	return os.CreateTemp(s.dir, chunkPattern)
}

// Cleanup deletes every final artifact in the directory whose path is not in
// active. Paths in the active set are never touched, stale or not; chunk
// temp files are skipped because they belong to possibly-running requests.
// Deletion is best effort per file, a failed remove is logged and skipped.
func (s *Store) Cleanup(active map[string]bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logging.Errorf("artifact cleanup: scan %s: %v", s.dir, err)
		return
	}

	removed, kept := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".mp3") {
			continue
		}
		if strings.HasSuffix(name, chunkSuffix) {
			continue
		}

		path := filepath.Join(s.dir, name)
		if active[path] {
			kept++
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.Errorf("artifact cleanup: remove %s: %v", path, err)
			continue
		}
		removed++
	}
	logging.Infof("artifact cleanup: kept %d, removed %d", kept, removed)
}

// RemoveAll deletes the given files, ignoring ones that are already gone.
// Used for the unconditional per-request chunk cleanup.
func RemoveAll(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Errorf("remove temp file %s: %v", p, err)
		}
	}
}
