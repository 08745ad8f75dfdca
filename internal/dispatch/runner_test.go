package dispatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := NewRunner("sh")
	r.Stdout = &stdout
	r.Stderr = &stderr
	return r, &stdout, &stderr
}

func TestRun_Success(t *testing.T) {
	r, stdout, _ := newTestRunner()

	result, err := r.Run("echo hello && echo world")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\nworld\n", stdout.String())
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	r, _, stderr := newTestRunner()

	result, err := r.Run("echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", stderr.String())
}

func TestRun_LaunchFailure(t *testing.T) {
	r, _, _ := newTestRunner()
	r.Shell = "/nonexistent/shell"

	_, err := r.Run("true")
	assert.Error(t, err)
}

func TestNewRunner_DefaultShell(t *testing.T) {
	assert.Equal(t, "sh", NewRunner("").Shell)
}
