// Package index maintains the persistent vector index with idempotent,
// fingerprint-deduplicated document insertion.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/vectorstore"
	"go.uber.org/zap"
)

// MetaFileName is the sidecar that records which fingerprints have been
// ingested, persisted beside the vector store artifacts.
const MetaFileName = "ingested_meta.json"

// dirLocks serializes access per resolved index directory. Concurrent
// requests against the same directory would otherwise race on the sidecar's
// read-modify-write cycle.
var (
	dirLocksMu sync.Mutex
	dirLocks   = map[string]*sync.Mutex{}
)

func lockFor(dir string) *sync.Mutex {
	dirLocksMu.Lock()
	defer dirLocksMu.Unlock()
	if mu, ok := dirLocks[dir]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	dirLocks[dir] = mu
	return mu
}

type metaFile struct {
	Rows map[string]bool `json:"rows"`
}

// Manager wraps a vector store with fingerprint-based idempotent insertion.
// LoadOrCreate must succeed before AddDocuments or Search.
type Manager struct {
	dir    string
	store  vectorstore.Store
	logger *zap.Logger

	mu     *sync.Mutex
	meta   metaFile
	loaded bool
}

// NewManager creates a manager for the index at dir. The sidecar metadata is
// read immediately; an unreadable sidecar is logged and treated as empty
// history, which silently loses prior dedup state.
func NewManager(dir string, store vectorstore.Store, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.NewPersistenceError("resolve index directory", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, domain.NewPersistenceError("create index directory", err)
	}

	m := &Manager{
		dir:    abs,
		store:  store,
		logger: logger,
		mu:     lockFor(abs),
		meta:   metaFile{Rows: map[string]bool{}},
	}
	m.loadMeta()
	return m, nil
}

func (m *Manager) metaPath() string {
	return filepath.Join(m.dir, MetaFileName)
}

func (m *Manager) loadMeta() {
	raw, err := os.ReadFile(m.metaPath())
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("ingestion metadata unreadable, starting with empty dedup history",
				zap.String("error_code", "META_UNREADABLE"),
				zap.String("path", m.metaPath()),
				zap.Error(err))
		}
		return
	}
	if len(raw) == 0 {
		return
	}

	var meta metaFile
	if err := json.Unmarshal(raw, &meta); err != nil || meta.Rows == nil {
		m.logger.Warn("ingestion metadata corrupt, starting with empty dedup history",
			zap.String("error_code", "META_CORRUPT"),
			zap.String("path", m.metaPath()),
			zap.Error(err))
		return
	}
	m.meta = meta
}

func (m *Manager) saveMeta() error {
	raw, err := json.MarshalIndent(m.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, MetaFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp metadata: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.metaPath()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace metadata: %w", err)
	}
	return nil
}

// Loaded reports whether LoadOrCreate has succeeded.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// LoadOrCreate loads the persisted index when its artifacts exist. Otherwise
// it creates a new index from the seed chunks, registering their fingerprints
// in the sidecar; with no index and no seeds it fails with ErrNoSeedData.
// The returned flag reports whether a fresh index was created from the seeds.
func (m *Manager) LoadOrCreate(ctx context.Context, seeds []domain.Chunk) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return false, nil
	}

	exists, err := m.store.Exists(ctx)
	if err != nil {
		return false, domain.NewPersistenceError("check vector index", err)
	}
	if exists {
		if err := m.store.Load(ctx); err != nil {
			return false, domain.NewPersistenceError("load vector index", err)
		}
		m.loaded = true
		m.logger.Info("vector index loaded", zap.String("dir", m.dir))
		return false, nil
	}

	if len(seeds) == 0 {
		return false, domain.ErrNoSeedData
	}

	novel := m.novelChunks(seeds)
	if err := m.store.Create(ctx, novel); err != nil {
		return false, domain.NewPersistenceError("create vector index", err)
	}
	if err := m.store.Save(ctx); err != nil {
		return false, domain.NewPersistenceError("persist vector index", err)
	}
	// Fingerprints are claimed only once the vectors are durable, and the
	// sidecar is written after the index save: a fingerprint must never be
	// marked as seen while its vector is missing.
	m.markSeen(novel)
	if err := m.saveMeta(); err != nil {
		return false, domain.NewPersistenceError("persist ingestion metadata", err)
	}

	m.loaded = true
	m.logger.Info("vector index created",
		zap.String("dir", m.dir),
		zap.Int("seed_chunks", len(novel)))
	return true, nil
}

// AddDocuments inserts chunks whose fingerprints have not been seen before
// and returns the number actually inserted. Duplicates are skipped; a call
// where every chunk is a duplicate returns 0 without touching disk.
func (m *Manager) AddDocuments(ctx context.Context, chunks []domain.Chunk) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return 0, domain.ErrIndexNotLoaded
	}

	novel := m.novelChunks(chunks)
	if len(novel) == 0 {
		return 0, nil
	}

	if err := m.store.Add(ctx, novel); err != nil {
		return 0, domain.NewPersistenceError("append to vector index", err)
	}
	if err := m.store.Save(ctx); err != nil {
		return 0, domain.NewPersistenceError("persist vector index", err)
	}
	m.markSeen(novel)
	if err := m.saveMeta(); err != nil {
		return 0, domain.NewPersistenceError("persist ingestion metadata", err)
	}

	m.logger.Info("chunks ingested",
		zap.String("dir", m.dir),
		zap.Int("inserted", len(novel)),
		zap.Int("skipped", len(chunks)-len(novel)))
	return len(novel), nil
}

// novelChunks filters out chunks whose fingerprints are already recorded and
// assigns each survivor its fingerprint as the chunk ID. It does not touch
// m.meta: fingerprints are claimed via markSeen only after the store writes
// succeed, so a failed write leaves the chunks re-ingestable. Callers hold
// m.mu. Duplicate fingerprints within the batch collapse to the first chunk.
func (m *Manager) novelChunks(chunks []domain.Chunk) []domain.Chunk {
	novel := make([]domain.Chunk, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		key := Fingerprint(c.Content, c.Metadata)
		if m.meta.Rows[key] || seen[key] {
			continue
		}
		seen[key] = true
		c.ID = key
		novel = append(novel, c)
	}
	return novel
}

// markSeen records the chunks' fingerprints in the in-memory sidecar. Callers
// hold m.mu and must only call this after the vectors are durably stored.
func (m *Manager) markSeen(chunks []domain.Chunk) {
	for _, c := range chunks {
		m.meta.Rows[c.ID] = true
	}
}

// Count returns the number of chunks in the index.
func (m *Manager) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return 0, domain.ErrIndexNotLoaded
	}
	n, err := m.store.Len(ctx)
	if err != nil {
		return 0, domain.NewPersistenceError("count vector index", err)
	}
	return n, nil
}

// Search runs a similarity query against the loaded index.
func (m *Manager) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return nil, domain.ErrIndexNotLoaded
	}
	results, err := m.store.Search(ctx, query, k)
	if err != nil {
		return nil, domain.NewPersistenceError("search vector index", err)
	}
	return results, nil
}
