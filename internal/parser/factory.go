package parser

import (
	"fmt"
	"sort"

	"fjacquet/mis-parser/internal/models"
)

// Set holds one FileParser per configured source.
type Set struct {
	parsers map[string]*FileParser
	names   []string
}

// NewSet builds a parser for every source. Construction stops at the first
// source whose strategy cannot be resolved.
func NewSet(sources map[string]models.SourceConfig, deps Deps) (*Set, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	set := &Set{parsers: make(map[string]*FileParser, len(sources)), names: names}
	for _, name := range names {
		p, err := New(name, sources[name], deps)
		if err != nil {
			return nil, fmt.Errorf("failed to build parser for source %s: %w", name, err)
		}
		set.parsers[name] = p
	}
	return set, nil
}

// GetParser returns the parser of the named source.
func (s *Set) GetParser(name string) (*FileParser, error) {
	if s != nil {
		if p, ok := s.parsers[name]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown source: %s", name)
}

// Names lists the sources in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
