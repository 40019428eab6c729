package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	t.Run("applies registered normalizer", func(t *testing.T) {
		assert.Equal(t, "hello", Apply("HELLO", "lowercase"))
		assert.Equal(t, "hello", Apply("  hello  ", "trim"))
		assert.Equal(t, "dont stop", Apply("don't stop.", "remove_punctuation"))
	})

	t.Run("unknown normalizer returns value unchanged", func(t *testing.T) {
		assert.Equal(t, "VALUE", Apply("VALUE", "no_such_normalizer"))
	})
}

func TestGet(t *testing.T) {
	fn, ok := Get("nname")
	assert.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = Get("missing")
	assert.False(t, ok)
}

func TestNameTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"first last", "Maria Garcia", []string{"garcia", "maria"}},
		{"last comma first", "Garcia, Maria", []string{"garcia", "maria"}},
		{"extra whitespace collapsed", "  Maria   Garcia ", []string{"garcia", "maria"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameTokens(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	// name order must not affect the canonical form
	assert.Equal(t, NormalizeName("Garcia, Maria"), NormalizeName("Maria Garcia"))
	assert.Equal(t, "garcia lopez maria", NormalizeName("Maria Garcia Lopez"))
	assert.Equal(t, "", NormalizeName("   "))
}
