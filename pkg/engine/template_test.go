package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("substitutes known placeholders", func(t *testing.T) {
		got := RenderTemplate("The {section} history for {member_name} has gaps.", map[string]string{
			"section":     "address",
			"member_name": "Maria Garcia",
		})
		assert.Equal(t, "The address history for Maria Garcia has gaps.", got)
	})

	t.Run("leaves unknown placeholders verbatim", func(t *testing.T) {
		got := RenderTemplate("Hello {member_name}, see {mystery}.", map[string]string{
			"member_name": "Maria",
		})
		assert.Equal(t, "Hello Maria, see {mystery}.", got)
	})

	t.Run("no placeholders", func(t *testing.T) {
		assert.Equal(t, "plain text", RenderTemplate("plain text", nil))
	})
}

func TestValidateTemplate(t *testing.T) {
	t.Run("accepts allowed placeholders", func(t *testing.T) {
		err := ValidateTemplate("Gaps for {member_name} in {section}: {gaps}", TemplatePlaceholders)
		assert.NoError(t, err)
	})

	t.Run("accepts plain text", func(t *testing.T) {
		assert.NoError(t, ValidateTemplate("no placeholders here", TemplatePlaceholders))
	})

	t.Run("rejects unknown placeholders", func(t *testing.T) {
		err := ValidateTemplate("Hello {member_name} and {bogus}", TemplatePlaceholders)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})
}

func TestRenderClientMessage(t *testing.T) {
	vars := map[string]string{"member_name": "Maria"}

	t.Run("empty template falls back", func(t *testing.T) {
		assert.Equal(t, "default message", renderClientMessage("", "default message", vars))
		assert.Equal(t, "default message", renderClientMessage("   ", "default message", vars))
	})

	t.Run("template wins when present", func(t *testing.T) {
		assert.Equal(t, "Dear Maria", renderClientMessage("Dear {member_name}", "default", vars))
	})
}
