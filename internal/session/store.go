// Package session manages session-scoped upload directories for the portal.
package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"go.uber.org/zap"
)

// Store creates and prunes session directories under a base directory.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

func NewStore(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

// NewSessionID builds an ID of the form <prefix>-YYYYMMDD_HHMMSS-<8 hex>.
func NewSessionID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102_150405"), suffix)
}

// NewSession creates a fresh session directory.
func (s *Store) NewSession(prefix string) (*Session, error) {
	id := NewSessionID(prefix)
	path := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s.logger.Info("session created", zap.String("session_id", id), zap.String("path", path))
	return &Session{ID: id, Path: path}, nil
}

// Cleanup removes all but the newest keepLatest session directories and
// returns the number removed. Session IDs embed a timestamp, so a descending
// name sort is a descending age sort.
func (s *Store) Cleanup(keepLatest int) (int, error) {
	if keepLatest < 0 {
		keepLatest = 0
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read sessions dir: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	removed := 0
	for _, name := range dirs[min(keepLatest, len(dirs)):] {
		path := filepath.Join(s.baseDir, name)
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("remove session %s: %w", name, err)
		}
		removed++
		s.logger.Info("old session removed", zap.String("path", path))
	}
	return removed, nil
}

// Session is one session-scoped upload directory.
type Session struct {
	ID   string
	Path string
}

// SaveFile writes the uploaded content into the session directory under the
// file's base name and returns the saved path.
func (s *Session) SaveFile(name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", domain.ErrMissingFile
	}

	path := filepath.Join(s.Path, base)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// CombineDocuments extracts every supported file in the session directory,
// sorted by name, and joins them with "Document: <name>" headers.
func (s *Session) CombineDocuments(ex *extract.Extractor) (string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return "", fmt.Errorf("read session dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && extract.Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []string
	for _, name := range names {
		content, err := ex.Extract(filepath.Join(s.Path, name))
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", name, err)
		}
		docs = append(docs, fmt.Sprintf("Document: %s\n%s", name, content))
	}
	return strings.Join(docs, "\n\n"), nil
}
