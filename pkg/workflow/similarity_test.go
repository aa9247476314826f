package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips punctuation", "  What is the Payment Amount?! ", "what is the payment amount"},
		{"keeps underscores and digits", "Net_30 terms, 2024.", "net_30 terms 2024"},
		{"unicode letters survive", "Qué pasa?", "qué pasa"},
		{"only punctuation", "?!.,", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestIsSimilar(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		existing  []string
		threshold float64
		want      bool
	}{
		{"identical question", "What is the payment amount?", []string{"What is the payment amount?"}, 0.7, true},
		{"different question", "What is the payment amount?", []string{"Who are the parties?"}, 0.7, false},
		{"punctuation and case ignored", "what is the PAYMENT amount", []string{"What is the payment amount?"}, 0.7, true},
		{"no prior questions", "What is the payment amount?", nil, 0.7, false},
		{"threshold is exclusive", "same text", []string{"same text"}, 1.0, false},
		{"empty candidate against text", "", []string{"Who are the parties?"}, 0.7, false},
		{"empty candidate against empty", "", []string{"?"}, 0.7, true},
		{"second entry matches", "What is the lease term?", []string{"Who pays utilities?", "What is the lease term"}, 0.7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSimilar(tt.candidate, tt.existing, tt.threshold))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 1.0, Ratio("abc", "abc"))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.InDelta(t, 0.5, Ratio("ab", "ac"), 0.0001)
}
