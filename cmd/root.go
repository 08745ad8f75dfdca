package cmd

import (
	"fmt"
	"os"
	"syncwatch/internal/config"
	"syncwatch/internal/db"
	"syncwatch/internal/logger"
	"syncwatch/internal/poller"

	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	debug   bool
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:          "syncwatch",
	Short:        "Run commands when Syncthing finishes syncing matching files",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger.Init(debug, cfg.LogFile)

		if cmd.Name() == "watch" {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(poller.ExitCode(err))
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.syncwatch/config.yaml)")
}
