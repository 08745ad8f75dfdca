package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syncwatch/internal/model"
	"syncwatch/internal/repository"

	"github.com/spf13/cobra"
)

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View executed commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d&failed=%t", daemonURL("/history"), historyN, historyFailed)
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("daemon returned %s", resp.Status)
		}

		var result struct {
			History []model.History  `json:"history"`
			Stats   repository.Stats `json:"stats"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return err
		}

		if len(result.History) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, h := range result.History {
			status := "✓"
			if h.Status == model.StatusFailed {
				status = "✗"
			}

			fmt.Printf("%s [%s] %-12s #%-8d exit=%-3d %s\n",
				status,
				h.DispatchedAt.Format("2006-01-02 15:04:05"),
				h.Watcher,
				h.EventID,
				h.ExitCode,
				h.Command,
			)
			if h.ErrMsg != "" {
				fmt.Printf("    %s\n", h.ErrMsg)
			}
		}

		fmt.Printf("\ntotal %d, succeeded %d, failed %d\n",
			result.Stats.Total, result.Stats.Success, result.Stats.Failed)

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show only failed commands")
	rootCmd.AddCommand(historyCmd)
}
