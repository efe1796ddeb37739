package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Named failure kinds reported to the user.
const (
	FailureNone               = ""
	FailureMissingTitle       = "MissingTitle"
	FailureInvalidTitleLength = "InvalidTitleLength"
	FailureInvalidAmount      = "InvalidAmount"
	FailureGeneric            = "GenericSubmissionFailure"
)

// Validator turns drafts into records. Zero value is ready to use.
type Validator struct {
	Now   func() time.Time
	NewID func() string
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v Validator) newID() string {
	if v.NewID != nil {
		return v.NewID()
	}
	return uuid.NewString()
}

// Validate checks d in a fixed order and returns the first failure.
// The stored title is the raw input; only its trimmed length is checked.
func (v Validator) Validate(d Draft) (Record, error) {
	if d.Title == nil || strings.TrimSpace(*d.Title) == "" {
		return Record{}, ErrMissingTitle
	}
	if n := TitleLength(*d.Title); n < MinTitleLength || n > MaxTitleLength {
		return Record{}, ErrInvalidTitleLength
	}
	if amountMissing(d.Amount) {
		return Record{}, ErrInvalidAmount
	}
	if *d.Amount <= 0 || math.IsInf(*d.Amount, 1) {
		return Record{}, ErrInvalidAmount
	}
	kind, err := ParseKind(string(d.Kind))
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:     v.newID(),
		Kind:   kind,
		Title:  *d.Title,
		Amount: *d.Amount,
	}
	if rec.Kind == "" {
		rec.Kind = KindExpense
	}
	if d.Date != nil && !d.Date.IsEmpty() {
		rec.Date = *d.Date
	} else {
		rec.Date = DateOf(v.now())
	}
	return rec, nil
}

// FailureKind maps an error returned by Validate or a submission to its named kind.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrMissingTitle):
		return FailureMissingTitle
	case errors.Is(err, ErrInvalidTitleLength):
		return FailureInvalidTitleLength
	case errors.Is(err, ErrInvalidAmount):
		return FailureInvalidAmount
	default:
		return FailureGeneric
	}
}

// Alert formats the message shown to the user when adding a record fails.
func Alert(err error) string {
	if err == nil {
		return ""
	}
	var reason string
	switch FailureKind(err) {
	case FailureMissingTitle:
		reason = ErrMissingTitle.Error()
	case FailureInvalidTitleLength:
		reason = ErrInvalidTitleLength.Error()
	case FailureInvalidAmount:
		reason = ErrInvalidAmount.Error()
	default:
		reason = err.Error()
	}
	if reason == "" {
		return "Failed to add expense."
	}
	return "Failed to add expense due to " + reason + "."
}
