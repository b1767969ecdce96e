package vectorstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coder/hnsw"
	"github.com/portalworks/docportal/internal/domain"
)

// Artifact files written under the index directory. Both must be present for
// the index to count as existing; the sidecar ingestion metadata lives beside
// them and is owned by the index manager, not the store.
const (
	graphFileName = "index.hnsw"
	docsFileName  = "index.docs.json"
)

var errLocalNotLoaded = errors.New("local store not loaded")

// Local is a directory-backed vector store: an HNSW graph holds the vectors
// and a JSON docstore maps chunk IDs back to content and metadata.
type Local struct {
	dir      string
	embedder Embedder

	graph *hnsw.Graph[string]
	docs  map[string]domain.Chunk
}

// NewLocal returns a Local store rooted at dir. The directory is created on
// first Save; Load and Exists tolerate it being absent.
func NewLocal(dir string, embedder Embedder) *Local {
	return &Local{dir: dir, embedder: embedder}
}

func (s *Local) graphPath() string { return filepath.Join(s.dir, graphFileName) }
func (s *Local) docsPath() string  { return filepath.Join(s.dir, docsFileName) }

// Exists reports whether both index artifacts are present on disk.
func (s *Local) Exists(ctx context.Context) (bool, error) {
	for _, p := range []string{s.graphPath(), s.docsPath()} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return true, nil
}

// Load reads both artifacts into memory.
func (s *Local) Load(ctx context.Context) error {
	f, err := os.Open(s.graphPath())
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()

	graph := hnsw.NewGraph[string]()
	// Import requires an io.ByteReader; a bare *os.File does not satisfy it.
	if err := graph.Import(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("import graph: %w", err)
	}

	raw, err := os.ReadFile(s.docsPath())
	if err != nil {
		return fmt.Errorf("read docstore: %w", err)
	}
	var file docstoreFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("decode docstore: %w", err)
	}
	if file.Chunks == nil {
		file.Chunks = map[string]domain.Chunk{}
	}

	s.graph = graph
	s.docs = file.Chunks
	return nil
}

// Create builds a fresh in-memory index from the given chunks. Call Save to
// persist it.
func (s *Local) Create(ctx context.Context, chunks []domain.Chunk) error {
	s.graph = hnsw.NewGraph[string]()
	s.docs = make(map[string]domain.Chunk, len(chunks))
	return s.Add(ctx, chunks)
}

// Add embeds and appends chunks to the loaded index.
func (s *Local) Add(ctx context.Context, chunks []domain.Chunk) error {
	if s.graph == nil {
		return errLocalNotLoaded
	}
	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("chunk without ID")
		}
		vec, err := s.embedder.GenerateEmbedding(ctx, c.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		s.graph.Add(hnsw.MakeNode(c.ID, vec))
		s.docs[c.ID] = c
	}
	return nil
}

// Save writes both artifacts, each via a temp file and rename.
func (s *Local) Save(ctx context.Context) error {
	if s.graph == nil {
		return errLocalNotLoaded
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, graphFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp graph: %w", err)
	}
	if err := s.graph.Export(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("export graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp graph: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.graphPath()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace graph: %w", err)
	}

	raw, err := json.MarshalIndent(docstoreFile{Chunks: s.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode docstore: %w", err)
	}
	tmpDocs, err := os.CreateTemp(s.dir, docsFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp docstore: %w", err)
	}
	if _, err := tmpDocs.Write(raw); err != nil {
		tmpDocs.Close()
		os.Remove(tmpDocs.Name())
		return fmt.Errorf("write docstore: %w", err)
	}
	if err := tmpDocs.Close(); err != nil {
		os.Remove(tmpDocs.Name())
		return fmt.Errorf("close temp docstore: %w", err)
	}
	if err := os.Rename(tmpDocs.Name(), s.docsPath()); err != nil {
		os.Remove(tmpDocs.Name())
		return fmt.Errorf("replace docstore: %w", err)
	}

	return nil
}

// Len returns the number of chunks in the loaded index.
func (s *Local) Len(ctx context.Context) (int, error) {
	if s.docs == nil {
		return 0, errLocalNotLoaded
	}
	return len(s.docs), nil
}

// Search embeds the query and returns up to k nearest chunks with cosine
// similarity scores.
func (s *Local) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if s.graph == nil {
		return nil, errLocalNotLoaded
	}
	vec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	nodes := s.graph.Search(vec, k)
	results := make([]SearchResult, 0, len(nodes))
	for _, n := range nodes {
		chunk, ok := s.docs[n.Key]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Chunk: chunk,
			Score: 1 - hnsw.CosineDistance(vec, n.Value),
		})
	}
	return results, nil
}

type docstoreFile struct {
	Chunks map[string]domain.Chunk `json:"chunks"`
}
