package core

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 25
)

type (
	// Kind discriminates expense and income records.
	Kind string

	Date struct {
		time.Time
	}

	// Record is an accepted expense or income entry. Records are only built by
	// Validator and never modified once stored.
	Record struct {
		ID     string
		Kind   Kind
		Title  string
		Date   Date
		Amount float64
	}

	// Draft collects form input before validation. Nil fields are unset.
	Draft struct {
		Kind   Kind
		Title  *string
		Date   *Date
		Amount *float64
	}
)

var (
	ErrMissingTitle       = errors.New("Title is required")
	ErrInvalidTitleLength = errors.New("Title must be between 3 and 25 characters long")
	ErrInvalidAmount      = errors.New("Amount must be greater than 0")
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrInvalidKind        = errors.New("invalid kind")
)

// ParseKind accepts "expense" or "income". The empty string is valid and means unset.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(s)); k {
	case "", KindExpense, KindIncome:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string as produced by <input type="date">.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// TitleLength counts characters of the trimmed title.
func TitleLength(title string) int {
	return utf8.RuneCountInString(strings.TrimSpace(title))
}

// amountMissing mirrors a falsy check: unset, zero and NaN all count as missing.
func amountMissing(a *float64) bool {
	return a == nil || *a == 0 || math.IsNaN(*a)
}

// IsZero reports whether no field of the draft has been set.
func (d Draft) IsZero() bool {
	return d.Kind == "" && d.Title == nil && d.Date == nil && d.Amount == nil
}

// DefaultDraft is the state the form returns to after a successful submission.
func DefaultDraft(now time.Time) Draft {
	title := ""
	date := DateOf(now)
	amount := 0.0
	return Draft{
		Kind:   KindExpense,
		Title:  &title,
		Date:   &date,
		Amount: &amount,
	}
}
