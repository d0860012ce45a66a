package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "****7890", MaskSecret("1234567890"))
}

func TestMaskSensitive(t *testing.T) {
	in := map[string]any{
		"tokenConvite": "0b7f3c1e-8a55-4f7e-9d1c-2f3a4b5c6d7e",
		"approver":     "42",
		"nested":       map[string]any{"senha": "Senha123", "ok": 1},
		"":             "dropped",
	}
	out := MaskSensitive(in)

	assert.Equal(t, "****6d7e", out["tokenConvite"])
	assert.Equal(t, "42", out["approver"])
	assert.Equal(t, map[string]any{"senha": "****h123", "ok": 1}, out["nested"])
	assert.NotContains(t, out, "")
	assert.Nil(t, MaskSensitive(nil))
}
