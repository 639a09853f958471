package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"themeplane/model"
	"themeplane/palette"
)

// ProblemKind names a class of validation finding.
type ProblemKind string

const (
	MalformedColorValue ProblemKind = "MalformedColorValue"
	EmptyGlobPattern    ProblemKind = "EmptyGlobPattern"
	InvalidGlobPattern  ProblemKind = "InvalidGlobPattern"
	NoContentGlobs      ProblemKind = "NoContentGlobs"
	DuplicateColorValue ProblemKind = "DuplicateColorValue"
)

// Severity ranks a problem. Only SeverityError makes a report fail.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Problem is a single validation finding. Index is -1 when the field is not
// a sequence.
type Problem struct {
	Kind     ProblemKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Field    string      `json:"field"`
	Index    int         `json:"index"`
	Key      string      `json:"key,omitempty"`
	Value    string      `json:"value,omitempty"`
	Message  string      `json:"message"`
}

func (p *Problem) Error() string {
	switch {
	case p.Index >= 0:
		return fmt.Sprintf("%s[%d]: %s", p.Field, p.Index, p.Message)
	case p.Key != "":
		return fmt.Sprintf("%s.%s: %s", p.Field, p.Key, p.Message)
	default:
		return fmt.Sprintf("%s: %s", p.Field, p.Message)
	}
}

// Report collects every problem found in a descriptor.
type Report struct {
	Problems []Problem `json:"problems"`
}

// HasErrors reports whether any problem has error severity.
func (r Report) HasErrors() bool {
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of problems with the given severity.
func (r Report) Count(sev Severity) int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == sev {
			n++
		}
	}
	return n
}

// Err joins the error-severity problems, or returns nil.
func (r Report) Err() error {
	var errs []error
	for i := range r.Problems {
		if r.Problems[i].Severity == SeverityError {
			errs = append(errs, &r.Problems[i])
		}
	}
	return errors.Join(errs...)
}

const (
	fieldContent     = "content"
	fieldExtendColor = "theme.extend.colors"
	fieldThemeColor  = "theme.colors"
)

// Validate checks a descriptor and returns every problem found. It never
// stops at the first problem.
func Validate(cfg model.ThemeConfig) Report {
	var r Report

	if len(cfg.Content) == 0 {
		r.Problems = append(r.Problems, Problem{
			Kind:     NoContentGlobs,
			Severity: SeverityWarning,
			Field:    fieldContent,
			Index:    -1,
			Message:  "no content globs; the scanner will find no class usage",
		})
	}
	for i, glob := range cfg.Content {
		pattern := strings.TrimSpace(glob)
		negated := strings.HasPrefix(pattern, "!")
		pattern = strings.TrimSpace(strings.TrimPrefix(pattern, "!"))
		if pattern == "" {
			msg := "glob pattern is empty"
			if negated {
				msg = "negated glob pattern is empty"
			}
			r.Problems = append(r.Problems, Problem{
				Kind:     EmptyGlobPattern,
				Severity: SeverityError,
				Field:    fieldContent,
				Index:    i,
				Value:    glob,
				Message:  msg,
			})
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			r.Problems = append(r.Problems, Problem{
				Kind:     InvalidGlobPattern,
				Severity: SeverityError,
				Field:    fieldContent,
				Index:    i,
				Value:    glob,
				Message:  fmt.Sprintf("glob pattern %q is not valid", glob),
			})
		}
	}

	r.Problems = append(r.Problems, validateColors(fieldThemeColor, cfg.Theme.Colors)...)
	r.Problems = append(r.Problems, validateColors(fieldExtendColor, cfg.Theme.Extend.Colors)...)

	return r
}

func validateColors(field string, p model.Palette) []Problem {
	var problems []Problem
	for _, c := range p.Entries() {
		if !palette.IsHex(c.Value) {
			problems = append(problems, Problem{
				Kind:     MalformedColorValue,
				Severity: SeverityError,
				Field:    field,
				Index:    -1,
				Key:      c.Name,
				Value:    c.Value,
				Message:  fmt.Sprintf("color value %q is not a #rrggbb hex literal", c.Value),
			})
		}
	}

	for _, group := range palette.Duplicates(p) {
		v, _ := p.Get(group[0])
		problems = append(problems, Problem{
			Kind:     DuplicateColorValue,
			Severity: SeverityInfo,
			Field:    field,
			Index:    -1,
			Key:      strings.Join(group, ","),
			Value:    v,
			Message:  fmt.Sprintf("colors %s share the value %s", strings.Join(group, ", "), v),
		})
	}
	return problems
}
