package autostart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeUnit(&buf, "/usr/local/bin/syncwatch", "/etc/syncwatch.yaml"))

	unit := buf.String()
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/syncwatch watch --config /etc/syncwatch.yaml\n")
	assert.Contains(t, unit, "RestartPreventExitStatus=2 3")
	assert.Contains(t, unit, "[Service]")
}

func TestLinuxAutoStarter_InstallUninstall(t *testing.T) {
	var calls [][]string
	l := &LinuxAutoStarter{
		Dir: t.TempDir(),
		Run: func(args ...string) ([]byte, error) {
			calls = append(calls, args)
			return nil, nil
		},
	}

	installed, err := l.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, l.Install("/bin/syncwatch", ""))

	b, err := os.ReadFile(filepath.Join(l.Dir, unitName))
	require.NoError(t, err)
	assert.Contains(t, string(b), "ExecStart=/bin/syncwatch watch\n")

	installed, err = l.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, l.Uninstall())
	installed, _ = l.IsInstalled()
	assert.False(t, installed)

	assert.Equal(t, []string{"--user", "daemon-reload"}, calls[0])
	assert.Equal(t, []string{"--user", "restart", unitName}, calls[2])
	assert.Len(t, calls, 5)
}
