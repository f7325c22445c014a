package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
			"limit": map[string]any{"type": "integer"},
		},
		"required": []string{"query"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"query": "hello"}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"query": "hello", "limit": float64(3)}, schema))
	// Extra fields are tolerated.
	assert.NoError(t, ValidateParameters(map[string]any{"query": "hello", "extra": true}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	assert.ErrorContains(t, err, "query")

	err = ValidateParameters(map[string]any{"query": 42}, schema)
	assert.ErrorContains(t, err, "expected type string")

	// JSON numbers arrive as float64; non-integral values fail integer checks.
	err = ValidateParameters(map[string]any{"query": "q", "limit": 1.5}, schema)
	assert.ErrorContains(t, err, "expected type integer")
}

func TestValidateParametersRequiredAsAnySlice(t *testing.T) {
	schema := map[string]any{
		"required": []any{"name"},
	}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"name": "x"}, schema))
}
