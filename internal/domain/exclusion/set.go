package exclusion

import (
	"slices"
	"strings"
)

// DefaultHiddenPrefix marks hidden directories.
const DefaultHiddenPrefix = "."

// defaultNames lists the basenames excluded by default.
// "uploads/" carries a trailing slash and therefore never equals a basename;
// it is kept to reproduce the historical exclusion list.
//
//nolint:gochecknoglobals // Read-only default data.
var defaultNames = []string{
	"__pycache__",
	".git",
	".cache",
	".upm",
	".pythonlibs",
	".local",
	"chat_history.txt",
	"uploads/",
	".env",
}

// DefaultNames returns a copy of the default exclusion list.
func DefaultNames() []string {
	return slices.Clone(defaultNames)
}

// Set decides whether a directory or file is excluded by its basename.
type Set struct {
	// names holds the literal basenames to exclude.
	names map[string]struct{}
	// hiddenPrefix prunes directories whose name starts with it; empty disables the rule.
	hiddenPrefix string
}

// New builds a Set from literal basenames and a hidden-directory prefix.
func New(names []string, hiddenPrefix string) *Set {
	set := &Set{
		names:        make(map[string]struct{}, len(names)),
		hiddenPrefix: hiddenPrefix,
	}

	for _, name := range names {
		set.names[name] = struct{}{}
	}

	return set
}

// Default returns the Set used when no settings override it.
func Default() *Set {
	return New(defaultNames, DefaultHiddenPrefix)
}

// Contains reports whether name is one of the literal basenames.
func (s *Set) Contains(name string) bool {
	_, ok := s.names[name]

	return ok
}

// SkipDir reports whether a directory called name must not be descended into.
func (s *Set) SkipDir(name string) bool {
	if s.Contains(name) {
		return true
	}

	return s.hiddenPrefix != "" && strings.HasPrefix(name, s.hiddenPrefix)
}

// SkipFile reports whether a file called name must be left out.
// Hidden files are kept unless listed explicitly.
func (s *Set) SkipFile(name string) bool {
	return s.Contains(name)
}

// Names returns the literal basenames in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
