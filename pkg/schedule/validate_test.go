package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(value string) time.Time {
	d, err := time.Parse(DateFormat, value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateCandidate(t *testing.T) {
	current := day("2025-06-20")
	window := ExclusionWindow{Start: day("2025-05-01"), End: day("2025-05-15")}

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"earlier and outside window", "2025-06-10", true},
		{"equal to current", "2025-06-20", false},
		{"later than current", "2025-07-01", false},
		{"one day before window start", "2025-04-30", true},
		{"exactly window start", "2025-05-01", false},
		{"inside window", "2025-05-10", false},
		{"exactly window end", "2025-05-15", false},
		{"one day after window end", "2025-05-16", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCandidate(day(tt.candidate), current, window))
		})
	}
}

func TestValidateCandidateNoWindow(t *testing.T) {
	current := day("2025-06-20")

	assert.True(t, ValidateCandidate(day("2025-05-10"), current, ExclusionWindow{}))
	assert.False(t, ValidateCandidate(day("2025-06-21"), current, ExclusionWindow{}))
}

func TestExclusionWindowContains(t *testing.T) {
	window := ExclusionWindow{Start: day("2025-05-01"), End: day("2025-05-15")}

	assert.True(t, window.Contains(day("2025-05-01")))
	assert.True(t, window.Contains(day("2025-05-15")))
	assert.False(t, window.Contains(day("2025-04-30")))
	assert.False(t, window.Contains(day("2025-05-16")))

	assert.False(t, ExclusionWindow{}.Contains(day("2025-05-10")))
	assert.True(t, ExclusionWindow{}.IsZero())
}
