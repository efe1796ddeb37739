// Package tracker drives the add/list/remove workflow of the expense form.
//
// A Tracker owns the draft being edited and the store it submits into. Every
// operation runs to completion under one lock, so callers see the same
// one-event-at-a-time behaviour an interactive form has.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

type State int

const (
	StateEmpty State = iota
	StateEditing
	StateValidating
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	default:
		return "unknown"
	}
}

// Form field names accepted by SetField.
const (
	FieldKind   = "kind"
	FieldTitle  = "title"
	FieldDate   = "date"
	FieldAmount = "amount"
)

var (
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidField wraps field errors reported by SubmitFields.
	ErrInvalidField = errors.New("invalid field")
)

// fieldOrder is the order SubmitFields applies fields in.
var fieldOrder = []string{FieldKind, FieldTitle, FieldDate, FieldAmount}

// Outcome reports the result of a submission.
type Outcome struct {
	Record  core.Record
	Err     error
	Failure string // core.Failure* name, empty on success
	Alert   string // user-facing message, empty on success
}

// OK reports whether the submission added a record.
func (o Outcome) OK() bool {
	return o.Err == nil
}

type Tracker struct {
	mu        sync.Mutex
	store     store.Store
	publisher events.Publisher
	validator core.Validator
	logger    *applog.Logger
	now       func() time.Time

	draft core.Draft
	state State
}

type Option func(*Tracker)

// WithPublisher sends record events to p.
func WithPublisher(p events.Publisher) Option {
	return func(t *Tracker) {
		if p != nil {
			t.publisher = p
		}
	}
}

// WithValidator replaces the default validator (clock and id source).
func WithValidator(v core.Validator) Option {
	return func(t *Tracker) {
		t.validator = v
		if v.Now != nil {
			t.now = v.Now
		}
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:     s,
		publisher: events.Nop{},
		logger:    applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentTracker),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetField applies one raw form value to the draft, the way the form's change
// handler does: amounts go through float parsing and unparseable values become
// NaN, an unparseable date clears the date.
func (t *Tracker) SetField(name, raw string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := applyField(&t.draft, name, raw); err != nil {
		return err
	}
	t.state = StateEditing
	return nil
}

func applyField(d *core.Draft, name, raw string) error {
	switch name {
	case FieldKind:
		k, err := core.ParseKind(raw)
		if err != nil {
			return fmt.Errorf("%s %q: %w", name, raw, err)
		}
		d.Kind = k
	case FieldTitle:
		title := raw
		d.Title = &title
	case FieldDate:
		if date, err := core.ParseDate(raw); err == nil {
			d.Date = &date
		} else {
			d.Date = nil
		}
	case FieldAmount:
		amount := parseAmount(raw)
		d.Amount = &amount
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func parseAmount(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Draft returns a copy of the draft being edited.
func (t *Tracker) Draft() core.Draft {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyDraft(t.draft)
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset discards the draft.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *Tracker) resetLocked() {
	t.draft = core.DefaultDraft(t.now())
	t.state = StateEmpty
}

// Submit validates the draft and, when valid, appends the new record to the
// store. The store and the draft are untouched on failure.
func (t *Tracker) Submit(ctx context.Context) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submit(ctx)
}

// SubmitFields applies fields to the draft and submits it as one operation,
// so no other call can interleave between the edits and the submission.
// Names outside kind, title, date and amount are rejected. When any field is
// rejected the draft is left as it was and nothing is submitted.
func (t *Tracker) SubmitFields(ctx context.Context, fields map[string]string) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name := range fields {
		if !slices.Contains(fieldOrder, name) {
			return t.fieldRejected(ctx, fmt.Errorf("%w: %q", ErrUnknownField, name))
		}
	}
	next := copyDraft(t.draft)
	for _, name := range fieldOrder {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := applyField(&next, name, raw); err != nil {
			return t.fieldRejected(ctx, err)
		}
	}
	if len(fields) > 0 {
		t.draft = next
		t.state = StateEditing
	}
	return t.submit(ctx)
}

func (t *Tracker) fieldRejected(ctx context.Context, err error) Outcome {
	err = fmt.Errorf("%w: %w", ErrInvalidField, err)
	t.logger.WarnContext(ctx, "Form field rejected",
		applog.FieldOperation, applog.OpValidate,
		applog.FieldError, err)
	return Outcome{Err: err, Failure: core.FailureKind(err), Alert: core.Alert(err)}
}

func (t *Tracker) submit(ctx context.Context) Outcome {
	t.state = StateValidating
	rec, err := t.submitLocked(ctx)
	if err != nil {
		t.state = StateEditing
		out := Outcome{Err: err, Failure: core.FailureKind(err), Alert: core.Alert(err)}
		t.logger.WarnContext(ctx, "Record rejected",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldFailure, out.Failure,
			applog.FieldError, err)
		return out
	}

	t.resetLocked()
	t.logger.InfoContext(ctx, "Record added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldRecordID, rec.ID,
		applog.FieldKind, rec.Kind,
		applog.FieldAmount, rec.Amount)
	t.publish(ctx, events.NewRecordAdded(rec, t.now()))
	return Outcome{Record: rec}
}

func (t *Tracker) submitLocked(ctx context.Context) (rec core.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", core.ErrSubmissionFailed, p)
		}
	}()

	rec, err = t.validator.Validate(copyDraft(t.draft))
	if err != nil {
		return core.Record{}, err
	}
	if err := t.store.Add(ctx, rec); err != nil {
		return core.Record{}, fmt.Errorf("%w: save record: %v", core.ErrSubmissionFailed, err)
	}
	return rec, nil
}

// Remove drops the record with the given id. Unknown ids are ignored.
func (t *Tracker) Remove(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.store.Remove(ctx, id)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to remove record",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldRecordID, id,
			applog.FieldError, err)
		return fmt.Errorf("remove record %s: %w", id, err)
	}
	if !removed {
		t.logger.DebugContext(ctx, "Remove ignored, no such record",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldRecordID, id)
		return nil
	}

	t.logger.InfoContext(ctx, "Record removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldRecordID, id)
	t.publish(ctx, events.NewRecordRemoved(id, t.now()))
	return nil
}

// List returns the stored records in insertion order.
func (t *Tracker) List(ctx context.Context) ([]core.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := t.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (t *Tracker) publish(ctx context.Context, e *events.RecordEvent) {
	if err := t.publisher.Publish(ctx, e); err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish record event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldRecordID, e.ID,
			"type", e.Type,
			applog.FieldError, err)
	}
}

func copyDraft(d core.Draft) core.Draft {
	out := core.Draft{Kind: d.Kind}
	if d.Title != nil {
		v := *d.Title
		out.Title = &v
	}
	if d.Date != nil {
		v := *d.Date
		out.Date = &v
	}
	if d.Amount != nil {
		v := *d.Amount
		out.Amount = &v
	}
	return out
}
