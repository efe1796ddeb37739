package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := map[float64]string{
		42.5:     "42.50",
		0.1:      "0.10",
		3:        "3.00",
		1234.567: "1234.57",
		1e-9:     "0.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Amount(in), "%v", in)
	}
}

func TestFormatterDate(t *testing.T) {
	d := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "3/9/2025"},
		{"en-GB", "09/03/2025"},
		{"de-DE", "9.3.2025"},
		{"it", "9/3/2025"},
		{"sv-SE", "2025-03-09"},
		{"ja", "2025/3/9"},
		{"", "3/9/2025"},
		{"not a locale", "3/9/2025"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFormatter(tt.locale).Date(d))
		})
	}
}

func TestFormatterZeroValues(t *testing.T) {
	assert.Equal(t, "", NewFormatter("en-US").Date(time.Time{}))
	assert.Equal(t, "3/9/2025", Formatter{}.Date(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}
