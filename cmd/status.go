package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syncwatch/internal/model"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var snap model.StatusSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		watermark := "-"
		if snap.Watermark != nil {
			watermark = fmt.Sprint(*snap.Watermark)
		}

		lastDispatch := "-"
		if snap.LastDispatch != nil {
			lastDispatch = snap.LastDispatch.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("uptime:        %s\n", time.Since(snap.StartedAt).Round(time.Second))
		fmt.Printf("watermark:     %s\n", watermark)
		fmt.Printf("polls:         %d (%d failed)\n", snap.Polls, snap.PollErrors)
		fmt.Printf("events:        %d (last id %d)\n", snap.Events, snap.LastEventID)
		fmt.Printf("commands:      %d (%d failed)\n", snap.Dispatched, snap.Failed)
		fmt.Printf("last command:  %s\n", lastDispatch)
		fmt.Printf("watchers:      %s\n", strings.Join(snap.Watchers, ", "))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
