package cmd

import (
	"fmt"
	"strings"
	"syncwatch/internal/config"
	"syncwatch/internal/watcher"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and watcher patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		file := config.File()
		if file == "" {
			file = "(none, using defaults)"
		}

		fmt.Printf("config:   %s\n", file)
		fmt.Printf("base url: %s\n", cfg.BaseURL)
		fmt.Printf("api key:  %t\n", cfg.APIKey != "")

		watchers := watcher.Load(cfg.Watchers)
		if len(watchers) == 0 {
			return fmt.Errorf("no watchers configured")
		}

		fmt.Printf("events:   %s\n\n", strings.Join(watcher.EventTypes(watchers), ","))

		invalid := 0
		for _, w := range watchers {
			mark := "ok"
			if !w.Valid() {
				mark = "invalid: " + w.Pattern().Err().Error()
				invalid++
			}

			fmt.Printf("%-16s folder=%s event=%s action=%s pattern=%q [%s]\n",
				w.Name, w.Folder, w.EventType, w.Action, w.Pattern().String(), mark)
		}

		if invalid > 0 {
			return fmt.Errorf("%d watcher(s) have patterns that do not compile and will never match", invalid)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
