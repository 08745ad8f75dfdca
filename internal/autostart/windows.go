package autostart

import (
	"fmt"
	"os/exec"
	"strings"
)

const taskName = "SyncwatchDaemon"

type WindowsAutoStarter struct{}

func (w *WindowsAutoStarter) Install(execPath, configFile string) error {
	args := watchArgs(configFile)
	if configFile != "" {
		args[len(args)-1] = fmt.Sprintf(`"%s"`, configFile)
	}

	cmd := exec.Command("schtasks", "/create",
		"/TN", taskName,
		"/TR", fmt.Sprintf(`"%s" %s`, execPath, strings.Join(args, " ")),
		"/SC", "ONLOGON",
		"/F")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	cmd := exec.Command("schtasks", "/DELETE", "/TN", taskName, "/F")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	cmd := exec.Command("schtasks", "/Query", "/TN", taskName)
	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}
