package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedOperation(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	doc := map[string]any{
		"op": "=",
		"args": []any{
			map[string]any{"property": "landsat:scene_id"},
			"LC82030282019133LGN00",
		},
	}
	assert.NoError(t, v.Validate(doc, Terse))
}

func TestValidateRejectsMissingArgs(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	doc := map[string]any{"op": "="}
	err = v.Validate(doc, Terse)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidateJSONRejectsInvalidJSON(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	err = v.ValidateJSON([]byte("{not json"), Terse)
	require.Error(t, err)
}

func TestValidateVerbosityTiers(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	doc := map[string]any{"op": "="}
	for _, verbosity := range []Verbosity{Terse, Detailed, VeryDetailed} {
		err := v.Validate(doc, verbosity)
		require.Error(t, err)
		assert.NotEmpty(t, err.Error())
	}
}

func TestDefaultValidatorIsSharedAndUsable(t *testing.T) {
	v1 := Default()
	v2 := Default()
	assert.Same(t, v1, v2)

	doc := map[string]any{"op": "isnull", "args": []any{map[string]any{"property": "foo"}}}
	assert.NoError(t, v1.Validate(doc, Terse))
}
