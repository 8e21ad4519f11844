package colorscheme

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// File is the document of user schemes.
type File struct {
	Schemes []Scheme `yaml:"schemes" json:"schemes"`
}

// Service resolves color schemes by ID.
type Service struct {
	path   string
	logger *logging.Logger

	mu      sync.RWMutex
	builtIn map[string]Scheme
	user    map[string]Scheme
	order   []string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a service with the built-in schemes. User schemes
// are read from and saved to path; an empty path keeps them in memory.
func NewService(path string, opts ...Option) *Service {
	s := &Service{
		path:    path,
		builtIn: make(map[string]Scheme),
		user:    make(map[string]Scheme),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger).WithComponent("colorscheme")
	for _, sc := range BuiltIns() {
		s.builtIn[sc.ID] = sc
		s.order = append(s.order, sc.ID)
	}
	return s
}

// Load reads user schemes. Invalid entries are skipped with a warning; a
// missing file is not an error.
func (s *Service) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read color schemes: %w", err)
	}
	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode color schemes %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = make(map[string]Scheme)
	s.order = s.order[:len(s.builtIn)]
	for _, sc := range doc.Schemes {
		if err := sc.Validate(); err != nil {
			s.logger.Warn("skipping %v", err)
			continue
		}
		if _, ok := s.builtIn[sc.ID]; ok {
			s.logger.Warn("skipping user scheme %s: shadows a built-in", sc.ID)
			continue
		}
		if _, dup := s.user[sc.ID]; dup {
			s.logger.Warn("skipping duplicate user scheme %s", sc.ID)
			continue
		}
		if sc.Category == "" {
			sc.Category = CategoryCustom
		}
		s.user[sc.ID] = sc
		s.order = append(s.order, sc.ID)
	}
	return nil
}

// Get returns the scheme with id.
func (s *Service) Get(id string) (Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, ok := s.builtIn[id]; ok {
		return sc.clone(), nil
	}
	if sc, ok := s.user[id]; ok {
		return sc.clone(), nil
	}
	return Scheme{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Lookup returns a scheme's name and palette.
func (s *Service) Lookup(id string) (string, project.ColorSchemeData, bool) {
	sc, err := s.Get(id)
	if err != nil {
		return "", project.ColorSchemeData{}, false
	}
	return sc.Name, sc.Data(), true
}

// All returns every scheme, built-ins first, in definition order.
func (s *Service) All() []Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Scheme, 0, len(s.order))
	for _, id := range s.order {
		if sc, ok := s.builtIn[id]; ok {
			out = append(out, sc.clone())
		} else {
			out = append(out, s.user[id].clone())
		}
	}
	return out
}

// ByCategory groups every scheme by category.
func (s *Service) ByCategory() map[string][]Scheme {
	out := make(map[string][]Scheme)
	for _, sc := range s.All() {
		out[sc.Category] = append(out[sc.Category], sc)
	}
	return out
}

// Categories returns the category names, sorted.
func (s *Service) Categories() []string {
	var out []string
	for c := range s.ByCategory() {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// WithFavorites returns every scheme with the favorite IDs first, keeping
// the relative order otherwise.
func (s *Service) WithFavorites(favorites []string) []Scheme {
	all := s.All()
	slices.SortStableFunc(all, func(a, b Scheme) int {
		fa, fb := slices.Contains(favorites, a.ID), slices.Contains(favorites, b.ID)
		switch {
		case fa && !fb:
			return -1
		case fb && !fa:
			return 1
		}
		return 0
	})
	return all
}

// Save adds or replaces a user scheme and writes the user file.
func (s *Service) Save(sc Scheme) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	sc.BuiltIn = false
	if sc.Category == "" {
		sc.Category = CategoryCustom
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.builtIn[sc.ID]; ok {
		return fmt.Errorf("%w: %s", ErrBuiltIn, sc.ID)
	}
	prev, existed := s.user[sc.ID]
	s.user[sc.ID] = sc.clone()
	if !existed {
		s.order = append(s.order, sc.ID)
	}
	if err := s.writeLocked(); err != nil {
		if existed {
			s.user[sc.ID] = prev
		} else {
			delete(s.user, sc.ID)
			s.order = s.order[:len(s.order)-1]
		}
		return err
	}
	return nil
}

// Delete removes a user scheme.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.builtIn[id]; ok {
		return fmt.Errorf("%w: %s", ErrBuiltIn, id)
	}
	prev, ok := s.user[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.user, id)
	i := slices.Index(s.order, id)
	s.order = slices.Delete(s.order, i, i+1)
	if err := s.writeLocked(); err != nil {
		s.user[id] = prev
		s.order = slices.Insert(s.order, i, id)
		return err
	}
	return nil
}

func (s *Service) writeLocked() error {
	if s.path == "" {
		return nil
	}
	var doc File
	for _, id := range s.order {
		if sc, ok := s.user[id]; ok {
			doc.Schemes = append(doc.Schemes, sc)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode color schemes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
