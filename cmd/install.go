package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"syncwatch/internal/autostart"
	"syncwatch/internal/config"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the watch daemon to start on login",
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		configFile := config.File()
		if configFile != "" {
			if configFile, err = filepath.Abs(configFile); err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
		}

		as := autostart.New()
		if err := as.Install(execPath, configFile); err != nil {
			return err
		}

		fmt.Println("syncwatch daemon registered for autostart")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
