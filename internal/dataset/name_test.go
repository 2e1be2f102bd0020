package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charselect/pkg/models"
)

func TestNormalizeName(t *testing.T) {
	ok := map[string]string{
		"genshin.json":     "genshin.json",
		"  genshin.json  ": "genshin.json",
		"星穹铁道.json":        "星穹铁道.json",
	}
	for in, want := range ok {
		got, err := NormalizeName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	bad := []string{
		"",
		"   ",
		"../secret.json",
		"..",
		".",
		"data/genshin.json",
		`..\secret.json`,
		"/etc/passwd",
		"a\x00.json",
		models.NoFileSentinel,
	}
	for _, in := range bad {
		got, err := NormalizeName(in)
		assert.Empty(t, got, in)
		assert.True(t, errors.Is(err, ErrName), "expected ErrName for %q, got %v", in, err)
	}
}
