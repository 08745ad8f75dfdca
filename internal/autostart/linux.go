package autostart

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

const unitName = "syncwatch.service"

// Exit statuses 2 and 3 mean bad credentials or a broken network path;
// restarting would only repeat them.
const serviceTemplate = `[Unit]
Description=syncwatch Syncthing event watcher
After=network-online.target syncthing.service
Wants=network-online.target

[Service]
ExecStart={{.ExecStart}}
Restart=on-failure
RestartSec=5
RestartPreventExitStatus=2 3

[Install]
WantedBy=default.target
`

type LinuxAutoStarter struct {
	// Dir overrides ~/.config/systemd/user.
	Dir string
	// Run executes systemctl; nil runs the real binary.
	Run func(args ...string) ([]byte, error)
}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	dir := l.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, unitName), nil
}

func (l *LinuxAutoStarter) systemctl(args ...string) ([]byte, error) {
	args = append([]string{"--user"}, args...)
	if l.Run != nil {
		return l.Run(args...)
	}

	return exec.Command("systemctl", args...).CombinedOutput()
}

func writeUnit(w io.Writer, execPath, configFile string) error {
	execStart := append([]string{execPath}, watchArgs(configFile)...)

	tmpl := template.Must(template.New("service").Parse(serviceTemplate))
	return tmpl.Execute(w, map[string]string{"ExecStart": strings.Join(execStart, " ")})
}

func (l *LinuxAutoStarter) Install(execPath, configFile string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create service file: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := writeUnit(f, execPath, configFile); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	cmds := [][]string{
		{"daemon-reload"},
		{"enable", unitName},
		{"restart", unitName},
	}

	for _, args := range cmds {
		if out, err := l.systemctl(args...); err != nil {
			return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	_, _ = l.systemctl("stop", unitName)
	_, _ = l.systemctl("disable", unitName)

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove service file: %w", err)
	}

	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
