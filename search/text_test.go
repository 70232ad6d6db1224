package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchedTerms(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []string
	}{
		{"all terms", "The contract expires in March.", "contract expires", []string{"contract", "expires"}},
		{"case and punctuation", "Passport number: YA1234567", "PASSPORT (number)?", []string{"passport", "number"}},
		{"stop words ignored", "the and of", "the and of", nil},
		{"partial match keeps query order", "renewal terms apply", "which terms for renewal", []string{"terms", "renewal"}},
		{"duplicates collapse", "fee fee", "fee fee", []string{"fee"}},
		{"no match", "unrelated text", "invoice", nil},
		{"empty query", "some text", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchedTerms(tt.text, tt.query))
		})
	}
}
