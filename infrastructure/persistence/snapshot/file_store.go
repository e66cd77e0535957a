package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/pkg/errors"
	"kgraph/pkg/observability"
)

const snapshotExt = ".json"

// FileStore persists one snapshot file per corpus id under a base
// directory. Writes go to a temp file first and are renamed into
// place, so readers never observe a partially written snapshot.
type FileStore struct {
	dir     string
	mu      sync.Mutex
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewFileStore creates the base directory if needed and returns a
// store rooted there.
func NewFileStore(dir string, logger *zap.Logger, metrics *observability.Metrics) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewPersistenceError("create snapshot directory", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger, metrics: metrics}, nil
}

// Save writes the graph's snapshot, replacing any previous snapshot
// for the same corpus id.
func (s *FileStore) Save(ctx context.Context, graph *aggregates.Graph) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelledError("snapshot save")
	}

	data, err := json.MarshalIndent(FromGraph(graph), "", "  ")
	if err != nil {
		s.recordOp("save", false)
		return errors.NewPersistenceError("encode snapshot", err)
	}

	path := s.pathFor(graph.CorpusID())

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "snapshot-*.tmp")
	if err != nil {
		s.recordOp("save", false)
		return errors.NewPersistenceError("create temp snapshot", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.recordOp("save", false)
		return errors.NewPersistenceError("write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.recordOp("save", false)
		return errors.NewPersistenceError("close snapshot", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		s.recordOp("save", false)
		return errors.NewPersistenceError("replace snapshot", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("corpus_id", graph.CorpusID()),
		zap.String("path", path))
	s.recordOp("save", true)
	return nil
}

// Load reads and rebuilds the graph for a corpus id. A missing
// snapshot is a not-found error, distinct from I/O failures.
func (s *FileStore) Load(ctx context.Context, corpusID string) (*aggregates.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelledError("snapshot load")
	}

	data, err := os.ReadFile(s.pathFor(corpusID))
	if err != nil {
		if os.IsNotExist(err) {
			s.recordOp("load", false)
			return nil, errors.NewNotFoundError(fmt.Sprintf("graph for corpus %q", corpusID))
		}
		s.recordOp("load", false)
		return nil, errors.NewPersistenceError("read snapshot", err)
	}

	var snap GraphSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.recordOp("load", false)
		return nil, errors.NewPersistenceError("decode snapshot", err)
	}

	graph, err := snap.ToGraph()
	if err != nil {
		s.recordOp("load", false)
		return nil, err
	}
	s.recordOp("load", true)
	return graph, nil
}

// Exists reports whether a snapshot is stored for the corpus id
func (s *FileStore) Exists(ctx context.Context, corpusID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewCancelledError("snapshot exists check")
	}

	_, err := os.Stat(s.pathFor(corpusID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.NewPersistenceError("stat snapshot", err)
	}
	return true, nil
}

// Delete removes the snapshot for a corpus id. It reports whether a
// snapshot was actually removed.
func (s *FileStore) Delete(ctx context.Context, corpusID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewCancelledError("snapshot delete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.pathFor(corpusID))
	if err != nil {
		if os.IsNotExist(err) {
			s.recordOp("delete", true)
			return false, nil
		}
		s.recordOp("delete", false)
		return false, errors.NewPersistenceError("delete snapshot", err)
	}
	s.recordOp("delete", true)
	return true, nil
}

// ListKeys returns the corpus ids with a stored snapshot, in
// directory order.
func (s *FileStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelledError("snapshot list")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.NewPersistenceError("list snapshots", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, snapshotExt))
	}
	return keys, nil
}

func (s *FileStore) pathFor(corpusID string) string {
	return filepath.Join(s.dir, sanitizeKey(corpusID)+snapshotExt)
}

// sanitizeKey maps a corpus id to a safe file name. Path separators
// and other hostile characters are replaced so an id can never escape
// the base directory.
func sanitizeKey(corpusID string) string {
	var b strings.Builder
	b.Grow(len(corpusID))
	for _, r := range corpusID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return name
}

func (s *FileStore) recordOp(op string, success bool) {
	if s.metrics != nil {
		s.metrics.RecordStoreOp(op, success)
	}
}
