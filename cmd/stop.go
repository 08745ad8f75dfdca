package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running watch daemon to finish its current command and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(daemonURL("/stop"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("watch daemon not reachable on port %d: %w", cfg.DaemonPort, err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("watch daemon returned %s", resp.Status)
		}

		fmt.Println("syncwatch is stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
