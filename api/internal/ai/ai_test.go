package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoGenerator struct {
	err error
}

func (g echoGenerator) Name() string { return "echo" }

func (g echoGenerator) Generate(_ context.Context, req Request) (string, error) {
	return req.Prompt, g.err
}

func TestHandle_Ready(t *testing.T) {
	h := Ready(echoGenerator{})
	assert.True(t, h.IsReady())
	assert.NoError(t, h.Err())

	gen, err := h.Generator()
	require.NoError(t, err)
	assert.Equal(t, "echo", gen.Name())
}

func TestHandle_Unavailable(t *testing.T) {
	cause := errors.New("no credentials")
	h := Unavailable(cause)
	assert.False(t, h.IsReady())
	assert.Equal(t, cause, h.Err())

	gen, err := h.Generator()
	assert.Nil(t, gen)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotReady))
	assert.Contains(t, err.Error(), "no credentials")
}

func TestHandle_ZeroValueIsUnavailable(t *testing.T) {
	var h Handle
	_, err := h.Generator()
	assert.True(t, eris.Is(err, ErrNotReady))

	assert.False(t, Ready(nil).IsReady())
	assert.Error(t, Unavailable(nil).Err())
}

func TestInstrumented_PassesThrough(t *testing.T) {
	gen := Instrumented(echoGenerator{})
	out, err := gen.Generate(context.Background(), Request{Prompt: "halo"})
	require.NoError(t, err)
	assert.Equal(t, "halo", out)
	assert.Equal(t, "echo", gen.Name())

	boom := errors.New("boom")
	_, err = Instrumented(echoGenerator{err: boom}).Generate(context.Background(), Request{})
	assert.Equal(t, boom, err)
}

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFences(in))
	}
}
