package table

import (
	"regexp"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

var (
	stepNumberRegex     = regexp.MustCompile(`^\d+\*?$`)
	subsequentStepRegex = regexp.MustCompile(`^(?:\d+\*?|` + End + `)$`)
	referenceRegex      = regexp.MustCompile(`^E_\d{4}$`)
)

// ValidateOption configures [Validate].
type ValidateOption func(*validateConfig)

type validateConfig struct {
	codes CodePattern
}

// WithCodePattern selects the outcome code pattern to validate against.
func WithCodePattern(p CodePattern) ValidateOption {
	return func(c *validateConfig) { c.codes = p }
}

// Validate checks t against the input contract of the graph builder.
// All violations are reported with code INVALID_INPUT, naming the offending
// step so the upstream table can be fixed.
func Validate(t *Table, opts ...ValidateOption) error {
	if t == nil {
		return errs.New(errs.ErrCodeInvalidInput, "table must not be nil")
	}
	cfg := validateConfig{codes: CodePatterns[DefaultCodePattern]}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := errs.ValidateEBDCode(t.Metadata.EBDCode); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := validateRow(&t.Rows[i], cfg); err != nil {
			return err
		}
	}
	firsts := make(map[int]string, len(t.MultiStepInstructions))
	for _, msi := range t.MultiStepInstructions {
		step := msi.FirstStepNumberAffected
		if !stepNumberRegex.MatchString(step) {
			return errs.New(errs.ErrCodeInvalidInput,
				"multi-step instruction starts at invalid step %q", step)
		}
		n, _ := StepOrdinal(step)
		if prev, dup := firsts[n]; dup {
			return errs.New(errs.ErrCodeInvalidInput,
				"multi-step instructions %q and %q start at the same step", prev, step)
		}
		firsts[n] = step
	}
	return nil
}

func validateRow(r *Row, cfg validateConfig) error {
	if !stepNumberRegex.MatchString(r.StepNumber) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid step number %q", r.StepNumber)
	}

	switch len(r.SubRows) {
	case 1:
		if r.SubRows[0].CheckResult.Result != nil {
			return errs.New(errs.ErrCodeInvalidInput,
				"step %s: a single sub-row must not carry a yes/no result", r.StepNumber)
		}
	case 2:
		a, b := r.SubRows[0].CheckResult.Result, r.SubRows[1].CheckResult.Result
		if a == nil || b == nil {
			return errs.New(errs.ErrCodeInvalidInput,
				"step %s: branching sub-rows need a yes/no result", r.StepNumber)
		}
		if *a == *b {
			return errs.New(errs.ErrCodeInvalidInput,
				"step %s: sub-rows need one true and one false result", r.StepNumber)
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput,
			"step %s: expected 1 or 2 sub-rows, got %d", r.StepNumber, len(r.SubRows))
	}

	for _, sr := range r.SubRows {
		if err := validateSubRow(r.StepNumber, sr, cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateSubRow(step string, sr SubRow, cfg validateConfig) error {
	next := sr.CheckResult.SubsequentStepNumber
	if next != "" && !subsequentStepRegex.MatchString(next) {
		return errs.New(errs.ErrCodeInvalidInput, "step %s: invalid subsequent step %q", step, next)
	}
	if sr.CheckResult.Result == nil && next == "" {
		return errs.New(errs.ErrCodeInvalidInput,
			"step %s: a non-branching sub-row must name a subsequent step", step)
	}
	if sr.ResultCode == "" && sr.Note == "" && next == "" {
		return errs.New(errs.ErrCodeInvalidInput,
			"step %s: sub-row has neither result code, note nor subsequent step", step)
	}
	if sr.ResultCode != "" && !cfg.codes.Match(sr.ResultCode) {
		return errs.New(errs.ErrCodeInvalidInput,
			"step %s: result code %q does not match pattern %s", step, sr.ResultCode, cfg.codes.Name)
	}
	for _, ref := range sr.EBDReferences {
		if !referenceRegex.MatchString(ref) {
			return errs.New(errs.ErrCodeInvalidInput, "step %s: invalid ebd reference %q", step, ref)
		}
	}
	return nil
}
