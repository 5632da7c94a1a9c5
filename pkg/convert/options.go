package convert

import "regexp"

// DefaultReferencePattern finds mentions of other decision trees in notes.
// The first submatch is the referenced ebd code.
var DefaultReferencePattern = regexp.MustCompile(`EBD\s+(E_\d{4})`)

// DefaultMultiOutcomeCodes lists codes that may occur with different notes
// in different steps of the same table.
var DefaultMultiOutcomeCodes = []string{"A**"}

var supportedReference = regexp.MustCompile(`^E_\d{4}$`)

// Option configures [TableToGraph].
type Option func(*builder)

// WithMultiOutcomeCodes replaces the set of codes that are allowed to carry
// different notes. Such outcomes are keyed by code and step number.
func WithMultiOutcomeCodes(codes ...string) Option {
	return func(b *builder) {
		b.multi = make(map[string]bool, len(codes))
		for _, c := range codes {
			b.multi[c] = true
		}
	}
}

// WithReferencePattern replaces [DefaultReferencePattern]. The pattern must
// have one capturing group yielding the referenced ebd code.
func WithReferencePattern(re *regexp.Regexp) Option {
	return func(b *builder) { b.refs = re }
}
