package autostart

import "runtime"

type AutoStarter interface {
	Install(execPath, configFile string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{}
	case "linux":
		return &LinuxAutoStarter{}
	default:
		return &UnsupportedAutoStarter{}
	}
}

func watchArgs(configFile string) []string {
	args := []string{"watch"}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}

	return args
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_, _ string) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
