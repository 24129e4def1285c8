package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Getters(t *testing.T) {
	opts := Options{
		"string_opt": "hello",
		"bool_opt":   true,
		"int_opt":    42,
		"int64_opt":  int64(7),
		"float_opt":  3.14,
		"num_string": "12",
		"slice_any":  []any{"a", 1, "b"},
		"slice_str":  []string{"x"},
	}

	assert.Equal(t, "hello", opts.GetString("string_opt", ""))
	assert.Equal(t, "default", opts.GetString("missing", "default"))
	assert.Equal(t, "default", opts.GetString("int_opt", "default"))

	assert.True(t, opts.GetBool("bool_opt", false))
	assert.True(t, opts.GetBool("missing", true))

	assert.Equal(t, 42, opts.GetInt("int_opt", 0))
	assert.Equal(t, 7, opts.GetInt("int64_opt", 0))
	assert.Equal(t, 3, opts.GetInt("float_opt", 0))
	assert.Equal(t, 12, opts.GetInt("num_string", 0))
	assert.Equal(t, 100, opts.GetInt("missing", 100))

	f, ok := opts.GetFloat("float_opt")
	require.True(t, ok)
	assert.InDelta(t, 3.14, f, 1e-9)
	f, ok = opts.GetFloat("int_opt")
	require.True(t, ok)
	assert.InDelta(t, 42.0, f, 1e-9)
	_, ok = opts.GetFloat("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, opts.GetStringSlice("slice_any"))
	assert.Equal(t, []string{"x"}, opts.GetStringSlice("slice_str"))
	assert.Equal(t, []string{"hello"}, opts.GetStringSlice("string_opt"))
	assert.Nil(t, opts.GetStringSlice("missing"))
}

func TestOptions_NilMap(t *testing.T) {
	var opts Options

	assert.Nil(t, opts.Get("x"))
	assert.Equal(t, "d", opts.GetString("x", "d"))
	assert.Equal(t, 5, opts.GetInt("x", 5))

	with := opts.With("x", 1)
	assert.Equal(t, 1, with.GetInt("x", 0))
}

func TestOptions_Params(t *testing.T) {
	opts := Options{
		OptModel:       "gpt-4o",
		OptSystem:      "be brief",
		OptMaxTokens:   500,
		OptTemperature: 0.7,
		OptTopP:        0.9,
		OptTopK:        40,
		OptStop:        []any{"\n\n", "END"},
	}

	p := opts.Params()
	assert.Equal(t, "gpt-4o", p.Model)
	assert.Equal(t, "be brief", p.System)
	assert.Equal(t, 500, p.MaxTokens)
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, 0.7, *p.Temperature, 1e-9)
	require.NotNil(t, p.TopP)
	assert.InDelta(t, 0.9, *p.TopP, 1e-9)
	require.NotNil(t, p.TopK)
	assert.Equal(t, 40, *p.TopK)
	assert.Equal(t, []string{"\n\n", "END"}, p.Stop)
}

func TestOptions_ParamsUnset(t *testing.T) {
	p := Options{}.Params()

	assert.Empty(t, p.Model)
	assert.Zero(t, p.MaxTokens)
	assert.Nil(t, p.Temperature)
	assert.Nil(t, p.TopP)
	assert.Nil(t, p.TopK)
	assert.Nil(t, p.Stop)
}
