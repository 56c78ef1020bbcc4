// Package validate runs the precondition chain: every operator input loops
// through a syntactic predicate plus an optional extended check until it
// passes or the operator interrupts the run.
package validate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mchris2/sqljobctl/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Context carries per-run validation state, most importantly the cached
// connection established by the instance check and reused by later
// existence checks. One Context per run, never shared.
type Context struct {
	Conn domain.Connection
}

func NewContext() *Context {
	return &Context{}
}

// CheckFunc is a field's extended check. Returning a *domain.ValidationError
// re-prompts; any other error ends the run.
type CheckFunc func(ctx context.Context, vc *Context, value string) error

// Field describes one single-value input.
type Field struct {
	Name    string
	Prompt  string
	Default string
	Pattern *regexp.Regexp
	Check   CheckFunc
}

// ListField describes a comma-separated multi-value input. The pattern
// applies to every element; one failing element invalidates the whole
// submission.
type ListField struct {
	Name    string
	Prompt  string
	Default string
	Pattern *regexp.Regexp
	Check   func(ctx context.Context, vc *Context, values []string) error
}

type Validator struct {
	prompter domain.Prompter
	logger   Logger
	vc       *Context
}

func New(prompter domain.Prompter, logger Logger) *Validator {
	return &Validator{prompter: prompter, logger: logger, vc: NewContext()}
}

// Context exposes the run's validation state to later pipeline stages.
func (v *Validator) Context() *Context {
	return v.vc
}

// Field prompts for and validates a single value, retrying until it passes.
// A rejected value is discarded; the default is only offered once.
func (v *Validator) Field(ctx context.Context, f Field) (string, error) {
	def := f.Default
	for {
		raw, err := v.prompter.Ask(f.Prompt, def)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		def = ""

		value := strings.TrimSpace(raw)
		if f.Pattern != nil && !f.Pattern.MatchString(value) {
			v.logger.Warnf("%v", domain.NewValidationError(domain.SyntaxInvalid, f.Name, "%q is not a valid %s", value, f.Name))
			continue
		}
		if f.Check != nil {
			if err := f.Check(ctx, v.vc, value); err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					v.logger.Warnf("%v", verr)
					continue
				}
				return "", err
			}
		}
		return value, nil
	}
}

// List prompts for a comma-separated list. Elements are trimmed and empties
// dropped; validation is all-or-nothing per submission.
func (v *Validator) List(ctx context.Context, f ListField) ([]string, error) {
	def := f.Default
prompt:
	for {
		raw, err := v.prompter.Ask(f.Prompt, def)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		def = ""

		var values []string
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				values = append(values, part)
			}
		}
		if len(values) == 0 {
			v.logger.Warnf("%v", domain.NewValidationError(domain.SyntaxInvalid, f.Name, "at least one %s is required", f.Name))
			continue
		}
		for _, value := range values {
			if f.Pattern != nil && !f.Pattern.MatchString(value) {
				v.logger.Warnf("%v", domain.NewValidationError(domain.SyntaxInvalid, f.Name, "%q is not a valid name, re-enter the full list", value))
				continue prompt
			}
		}
		if f.Check != nil {
			if err := f.Check(ctx, v.vc, values); err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					v.logger.Warnf("%v", verr)
					continue
				}
				return nil, err
			}
		}
		return values, nil
	}
}

// Moment prompts for the one-time execution moment. A moment that is not
// strictly in the future needs an explicit confirmation; declining it ends
// the run rather than re-prompting.
func (v *Validator) Moment(ctx context.Context, f Field, layout string, now func() time.Time) (time.Time, error) {
	def := f.Default
	for {
		raw, err := v.prompter.Ask(f.Prompt, def)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		def = ""

		moment, perr := time.ParseInLocation(layout, strings.TrimSpace(raw), time.Local)
		if perr != nil {
			v.logger.Warnf("%v", domain.NewValidationError(domain.SyntaxInvalid, f.Name, "%q does not match %s", raw, layout))
			continue
		}
		if !moment.After(now()) {
			v.logger.Warnf("Scheduled moment %s is not in the future", moment.Format(layout))
			ok, cerr := v.prompter.Confirm("The moment is in the past, the job will fire immediately. Proceed anyway?")
			if cerr != nil {
				return time.Time{}, fmt.Errorf("%w: %v", domain.ErrAborted, cerr)
			}
			if !ok {
				return time.Time{}, fmt.Errorf("%w: past schedule moment declined", domain.ErrAborted)
			}
		}
		return moment, nil
	}
}
