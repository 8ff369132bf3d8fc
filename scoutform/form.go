package scoutform

import (
	"context"
	"errors"
)

// Status is the lifecycle of a form submission.
type Status int

const (
	StatusEditing Status = iota
	StatusSubmitting
	StatusSubmitted
	StatusFailed
)

// Submitter is where a completed draft goes on submit. The form itself never
// talks to the network; the entry store implements this.
type Submitter interface {
	SubmitEntry(ctx context.Context, entry *Entry) (*Entry, error)
}

var (
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	ErrStepInvalid    = errors.New("current step has validation errors")
)

// Form is the multi-step controller over a scouting config. Step 0 is the
// fixed match-info step; steps 1..len(categories) render one category each.
// It is driven from a single goroutine (the UI event loop): Next, Prev and
// the submit calls are user-triggered and non-reentrant.
type Form struct {
	cfg       *Config
	fc        Context
	draft     *Entry
	step      int
	status    Status
	errs      map[string]string
	submitErr error
}

func NewForm(cfg *Config, fc Context) *Form {
	return &Form{
		cfg:   cfg,
		fc:    fc,
		draft: BuildInitialEntry(cfg, fc),
		errs:  map[string]string{},
	}
}

func (f *Form) Config() *Config            { return f.cfg }
func (f *Form) Draft() *Entry              { return f.draft }
func (f *Form) Step() int                  { return f.step }
func (f *Form) Status() Status             { return f.status }
func (f *Form) Errors() map[string]string  { return f.errs }
func (f *Form) SubmitError() error         { return f.submitErr }
func (f *Form) LastStep() int              { return len(f.cfg.Categories) }
func (f *Form) OnLastStep() bool           { return f.step == f.LastStep() }

// Category returns the config category backing the current step, or nil on
// the match-info step.
func (f *Form) Category() *Category {
	if f.step == 0 || f.step > len(f.cfg.Categories) {
		return nil
	}
	return &f.cfg.Categories[f.step-1]
}

// SetValue records a typed value on the draft and clears any inline error
// for that field.
func (f *Form) SetValue(fieldID string, v any) {
	switch fieldID {
	case "teamNumber":
		f.draft.TeamNumber, _ = v.(string)
	case "matchNumber":
		f.draft.MatchNumber, _ = v.(string)
	case "alliance":
		f.draft.Alliance, _ = v.(string)
	default:
		f.draft.Fields[fieldID] = v
	}
	delete(f.errs, fieldID)
}

// Next advances one step if the current step validates; otherwise the step
// is held and the errors surface through Errors.
func (f *Form) Next() bool {
	res := ValidateStep(f.step, f.draft, f.cfg)
	f.errs = res.Errors
	if !res.Valid {
		return false
	}
	if f.step < f.LastStep() {
		f.step++
	}
	return true
}

// Prev moves back one step, clamped at the match-info step.
func (f *Form) Prev() {
	if f.step > 0 {
		f.step--
	}
}

// BeginSubmit validates the current step and, if clean, moves the form into
// Submitting and hands back a snapshot of the draft for the caller to
// deliver. While Submitting, further begins are refused; the trigger is
// expected to be disabled until FinishSubmit.
func (f *Form) BeginSubmit() (*Entry, error) {
	if f.status == StatusSubmitting {
		return nil, ErrSubmitInFlight
	}
	res := ValidateStep(f.step, f.draft, f.cfg)
	f.errs = res.Errors
	if !res.Valid {
		return nil, ErrStepInvalid
	}
	f.status = StatusSubmitting
	f.submitErr = nil
	return f.draft.Clone(), nil
}

// FinishSubmit resolves an in-flight submit with the outcome of the store
// call.
func (f *Form) FinishSubmit(err error) {
	if f.status != StatusSubmitting {
		return
	}
	if err != nil {
		f.status = StatusFailed
		f.submitErr = err
		return
	}
	f.status = StatusSubmitted
}

// Submit is the synchronous convenience for headless callers: BeginSubmit,
// deliver to the store, FinishSubmit.
func (f *Form) Submit(ctx context.Context, s Submitter) error {
	snapshot, err := f.BeginSubmit()
	if err != nil {
		return err
	}
	_, err = s.SubmitEntry(ctx, snapshot)
	f.FinishSubmit(err)
	return err
}

// Retry recovers a failed submit back to editing on the same step.
func (f *Form) Retry() {
	if f.status == StatusFailed {
		f.status = StatusEditing
		f.submitErr = nil
	}
}

// Reset returns to step 0 with a fresh identity (new id and timestamp,
// cleared team/match, alliance back to red) while keeping the collected
// field values, matching how the form behaved between matches: scouts keep
// tallying the same robot capabilities and only re-pick the match. The UI
// calls this after showing the submitted banner for a couple of seconds.
func (f *Form) Reset() {
	fresh := BuildInitialEntry(f.cfg, f.fc)
	fresh.Fields = f.draft.Fields
	f.draft = fresh
	f.step = 0
	f.status = StatusEditing
	f.errs = map[string]string{}
	f.submitErr = nil
}
