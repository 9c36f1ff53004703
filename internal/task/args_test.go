package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_Accessors(t *testing.T) {
	args := Args{"n": 3, "s": "42", "b": "true", "flag": false, "f": 2.0}

	n, err := args.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = args.Int("s")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = args.Int("f")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := args.Bool("b")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = args.Bool("flag")
	require.NoError(t, err)
	assert.False(t, b)

	s, err := args.Text("n")
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	_, err = args.Int("missing")
	assert.Error(t, err)
	_, err = args.Bool("n")
	assert.Error(t, err)

	assert.Equal(t, []string{"b", "f", "flag", "n", "s"}, args.Names())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "x", Format("x"))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "7", Format(7))
	assert.Equal(t, "1.5", Format(1.5))
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeContainer, ParseType(" container "))
	assert.Equal(t, TypeNative, ParseType("Native"))
	assert.Equal(t, "PYTHON", ParseType("python").String())
}
