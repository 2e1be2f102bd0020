package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"charselect/internal/dataset"
	"charselect/pkg/models"
)

type cachedFile struct {
	modTime time.Time
	raw     []byte
	records []models.CharacterRecord
	list    []string
}

// Store serves the dataset files of one data directory. Parsed files are
// cached by path and dropped when their modification time changes.
type Store struct {
	dir    *dataset.DirLoader
	logger *log.Logger

	mu     sync.Mutex
	files  map[string]cachedFile
	allSig string
	all    []string
}

func NewStore(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		dir:    dataset.NewDirLoader(dir),
		logger: logger,
		files:  make(map[string]cachedFile),
	}
}

func (s *Store) Dir() string { return s.dir.Dir }

// Files lists the .json files of the data directory, sorted. A missing or
// empty directory yields the no-file sentinel.
func (s *Store) Files() []string {
	entries, err := os.ReadDir(s.dir.Dir)
	if err != nil {
		s.logger.Printf("[catalog] scan %s: %v", s.dir.Dir, err)
		return []string{models.NoFileSentinel}
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		out = append(out, e.Name())
	}
	if len(out) == 0 {
		return []string{models.NoFileSentinel}
	}
	sort.Strings(out)
	return out
}

func (s *Store) load(name string) (cachedFile, error) {
	path, err := s.dir.Path(name)
	if err != nil {
		return cachedFile{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return cachedFile{}, &dataset.LoadError{Kind: dataset.KindTransport, Name: name, Err: err}
	}

	s.mu.Lock()
	cached, ok := s.files[path]
	s.mu.Unlock()
	if ok && cached.modTime.Equal(st.ModTime()) {
		return cached, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cachedFile{}, &dataset.LoadError{Kind: dataset.KindTransport, Name: name, Err: err}
	}
	records, err := dataset.ParseRecords(filepath.Base(path), raw)
	if err != nil {
		return cachedFile{}, err
	}
	_, list := dataset.Build(records)

	f := cachedFile{modTime: st.ModTime(), raw: raw, records: records, list: list}
	s.mu.Lock()
	s.files[path] = f
	s.mu.Unlock()

	s.logger.Printf("[catalog] loaded %s (%d characters)", filepath.Base(path), len(records))
	return f, nil
}

// Raw returns the validated file contents of a dataset.
func (s *Store) Raw(name string) ([]byte, error) {
	f, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return f.raw, nil
}

func (s *Store) Records(name string) ([]models.CharacterRecord, error) {
	f, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return f.records, nil
}

// Characters is the display list of one dataset, or the no-data sentinel.
func (s *Store) Characters(name string) []string {
	f, err := s.load(name)
	if err != nil {
		s.logger.Printf("[catalog] characters for %q: %v", name, err)
		return []string{models.NoDataSentinel}
	}
	return f.list
}

// AllCharacters is the sorted union of display names across every dataset.
// The result is reused until a file is added, removed or modified.
func (s *Store) AllCharacters() []string {
	files := s.Files()
	sig, err := s.signature(files)
	if err == nil {
		s.mu.Lock()
		if sig == s.allSig && s.all != nil {
			all := s.all
			s.mu.Unlock()
			return all
		}
		s.mu.Unlock()
	}

	seen := make(map[string]struct{})
	for _, name := range files {
		if models.IsSentinel(name) {
			continue
		}
		for _, n := range s.Characters(name) {
			if n != "" && !models.IsSentinel(n) {
				seen[n] = struct{}{}
			}
		}
	}

	all := make([]string, 0, len(seen))
	for n := range seen {
		all = append(all, n)
	}
	sort.Strings(all)
	if len(all) == 0 {
		all = []string{models.NoDataSentinel}
	}

	if err == nil {
		s.mu.Lock()
		s.allSig, s.all = sig, all
		s.mu.Unlock()
	}
	return all
}

func (s *Store) signature(files []string) (string, error) {
	parts := make([]string, 0, len(files))
	for _, name := range files {
		if models.IsSentinel(name) {
			continue
		}
		path, err := s.dir.Path(name)
		if err != nil {
			return "", err
		}
		st, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s:%d", name, st.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|"), nil
}

// Invalidate drops the cached copy of name.
func (s *Store) Invalidate(name string) {
	path, err := s.dir.Path(name)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.files, path)
	s.allSig, s.all = "", nil
	s.mu.Unlock()
}
