package claude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsFresh(t *testing.T) {
	args, err := BuildArgs(Request{
		Prompt: "say hi",
		Model:  "m1",
		Mode:   ModeFresh,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"-p", "say hi",
		"--model", "m1",
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	}, args)
}

func TestBuildArgsContinue(t *testing.T) {
	args, err := BuildArgs(Request{
		Prompt: "keep going",
		Model:  "m1",
		Mode:   ModeContinue,
	})
	require.NoError(t, err)

	require.NotEmpty(t, args)
	assert.Equal(t, "-c", args[0], "continuation flag leads the vector")
	assert.Equal(t, []string{
		"-c",
		"-p", "keep going",
		"--model", "m1",
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	}, args)
}

func TestBuildArgsResume(t *testing.T) {
	args, err := BuildArgs(Request{
		Prompt:    "pick up where we left off",
		Model:     "m2",
		Mode:      ModeResume,
		SessionID: "sess-42",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--resume", "sess-42",
		"-p", "pick up where we left off",
		"--model", "m2",
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	}, args)
}

func TestBuildArgsResumeWithoutSession(t *testing.T) {
	_, err := BuildArgs(Request{
		Prompt: "anything",
		Model:  "m1",
		Mode:   ModeResume,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBuildArgsEmptyPrompt(t *testing.T) {
	_, err := BuildArgs(Request{
		Model: "m1",
		Mode:  ModeFresh,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBuildArgsUnknownMode(t *testing.T) {
	_, err := BuildArgs(Request{
		Prompt: "anything",
		Model:  "m1",
		Mode:   Mode("bogus"),
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBuildArgsIsPure(t *testing.T) {
	req := Request{Prompt: "p", Model: "m", Mode: ModeFresh}

	first, err := BuildArgs(req)
	require.NoError(t, err)
	second, err := BuildArgs(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
