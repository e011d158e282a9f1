// Package keywords holds the fixed vocabularies used to classify jobs. The
// vocabularies are embedded at build time and parsed once.
package keywords

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultVocabulary []byte

// Set is an immutable group of keyword lists. Use the accessor methods; the
// returned slices are copies.
type Set struct {
	texas    []string
	remote   []string
	frontend []string
}

type rawSet struct {
	Texas    []string `yaml:"texas"`
	Remote   []string `yaml:"remote"`
	Frontend []string `yaml:"frontend"`
}

var loadDefault = sync.OnceValue(func() *Set {
	s, err := Parse(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded vocabulary: %v", err))
	}
	return s
})

// Default returns the embedded vocabulary.
func Default() *Set {
	return loadDefault()
}

// Parse builds a Set from YAML. Every list must be non-empty.
func Parse(data []byte) (*Set, error) {
	var raw rawSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing keyword vocabulary: %w", err)
	}

	s := &Set{
		texas:    clean(raw.Texas),
		remote:   clean(raw.Remote),
		frontend: clean(raw.Frontend),
	}
	switch {
	case len(s.texas) == 0:
		return nil, fmt.Errorf("keyword vocabulary: texas list is empty")
	case len(s.remote) == 0:
		return nil, fmt.Errorf("keyword vocabulary: remote list is empty")
	case len(s.frontend) == 0:
		return nil, fmt.Errorf("keyword vocabulary: frontend list is empty")
	}
	return s, nil
}

func clean(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Texas returns the Texas location keywords.
func (s *Set) Texas() []string { return append([]string(nil), s.texas...) }

// Remote returns the remote-work keywords.
func (s *Set) Remote() []string { return append([]string(nil), s.remote...) }

// Frontend returns the front-end role keywords.
func (s *Set) Frontend() []string { return append([]string(nil), s.frontend...) }

// MatchTexas reports whether lowered text mentions a Texas keyword.
func (s *Set) MatchTexas(lowered string) bool { return containsAny(lowered, s.texas) }

// MatchRemote reports whether lowered text mentions a remote keyword.
func (s *Set) MatchRemote(lowered string) bool { return containsAny(lowered, s.remote) }

// MatchFrontend reports whether lowered text mentions a front-end keyword.
func (s *Set) MatchFrontend(lowered string) bool { return containsAny(lowered, s.frontend) }

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
