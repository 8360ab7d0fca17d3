package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSchema_StripsUnsupportedFields(t *testing.T) {
	schema := map[string]any{
		"title": "DemoModel",
		"type":  "object",
		"properties": map[string]any{
			"title_field":   map[string]any{"type": "string", "title": "Custom Title"},
			"default_field": map[string]any{"type": "integer", "default": 42},
		},
	}

	cleaned := CleanSchema(schema)

	assert.NotContains(t, cleaned, "title")
	assert.Equal(t, false, cleaned["additionalProperties"])

	properties := cleaned["properties"].(map[string]any)
	assert.NotContains(t, properties["title_field"], "title")
	assert.NotContains(t, properties["default_field"], "default")
}

func TestCleanSchema_Recursive(t *testing.T) {
	schema := map[string]any{
		"title": "Main",
		"type":  "object",
		"properties": map[string]any{
			"sub": map[string]any{
				"title":   "Sub",
				"default": "val",
				"type":    "object",
				"properties": map[string]any{
					"leaf": map[string]any{"default": 1},
				},
			},
		},
	}

	cleaned := CleanSchema(schema)

	assert.NotContains(t, cleaned, "title")
	assert.Equal(t, false, cleaned["additionalProperties"])

	sub := cleaned["properties"].(map[string]any)["sub"].(map[string]any)
	assert.NotContains(t, sub, "title")
	assert.NotContains(t, sub, "default")
	assert.Equal(t, false, sub["additionalProperties"])

	leaf := sub["properties"].(map[string]any)["leaf"].(map[string]any)
	assert.NotContains(t, leaf, "default")
}

func TestCleanSchema_Defs(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"$defs": map[string]any{
			"Inner": map[string]any{
				"title": "Inner",
				"type":  "object",
				"properties": map[string]any{
					"x": map[string]any{"default": 3},
				},
			},
		},
	}

	cleaned := CleanSchema(schema)

	inner := cleaned["$defs"].(map[string]any)["Inner"].(map[string]any)
	assert.NotContains(t, inner, "title")
	assert.Equal(t, false, inner["additionalProperties"])
	assert.NotContains(t, inner["properties"].(map[string]any)["x"], "default")
}

func TestCleanSchema_DoesNotMutateInput(t *testing.T) {
	schema := map[string]any{
		"title": "Main",
		"type":  "object",
	}

	_ = CleanSchema(schema)

	require.Contains(t, schema, "title")
	assert.NotContains(t, schema, "additionalProperties")
}
