// Package display formats records for people: localized dates and amounts
// with two decimals.
package display

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Short date layouts per locale, in the shape browsers use for toLocaleDateString.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.Italian, "2/1/2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Swedish, "2006-01-02"},
	{language.Danish, "2.1.2006"},
	{language.Norwegian, "2.1.2006"},
	{language.Polish, "2.01.2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Formatter renders values for one locale.
type Formatter struct {
	tag    language.Tag
	layout string
}

// NewFormatter picks the closest supported locale to the BCP-47 tag; unknown
// or unparsable locales fall back to en-US.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.AmericanEnglish
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return Formatter{tag: dateLayouts[idx].tag, layout: dateLayouts[idx].layout}
}

// Locale returns the matched locale.
func (f Formatter) Locale() string {
	return f.tag.String()
}

// Date formats t as a short localized date. The zero time renders empty.
func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	layout := f.layout
	if layout == "" {
		layout = dateLayouts[0].layout
	}
	return t.Format(layout)
}

// Amount formats v with exactly two decimals.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
