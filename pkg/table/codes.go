package table

import (
	"regexp"
	"slices"
	"sort"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

// CodePattern describes the admissible outcome codes of one format version.
type CodePattern struct {
	Name       string
	Regexp     *regexp.Regexp
	Exceptions []string // literal codes accepted in addition to Regexp
}

// Match reports whether code is admissible.
func (p CodePattern) Match(code string) bool {
	if slices.Contains(p.Exceptions, code) {
		return true
	}
	return p.Regexp != nil && p.Regexp.MatchString(code)
}

// DefaultCodePattern is the name of the pattern used when none is configured.
const DefaultCodePattern = "2024"

// CodePatterns holds the known outcome code patterns by version name.
var CodePatterns = map[string]CodePattern{
	"2023": {
		Name:       "2023",
		Regexp:     regexp.MustCompile(`^[A-Z]\d+$`),
		Exceptions: []string{"A**"},
	},
	"2024": {
		Name:       "2024",
		Regexp:     regexp.MustCompile(`^[A-Z]{1,2}\d+$`),
		Exceptions: []string{"A**"},
	},
}

// LookupCodePattern returns the registered pattern with the given name.
// An empty name selects [DefaultCodePattern].
func LookupCodePattern(name string) (CodePattern, error) {
	if name == "" {
		name = DefaultCodePattern
	}
	p, ok := CodePatterns[name]
	if !ok {
		names := make([]string, 0, len(CodePatterns))
		for n := range CodePatterns {
			names = append(names, n)
		}
		sort.Strings(names)
		return CodePattern{}, errs.New(errs.ErrCodeInvalidInput, "unknown code pattern %q (known: %v)", name, names)
	}
	return p, nil
}
