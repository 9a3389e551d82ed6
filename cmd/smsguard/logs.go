package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/baitbusters/smsguard/internal/model"
	"github.com/baitbusters/smsguard/internal/storage"
)

func logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Print the verdict log, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStore(settings.StorePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vlog, err := storage.OpenVerdictLog(ctx, store, settings.LogCapacity)
			if err != nil {
				return err
			}

			entries := vlog.Entries()
			if len(entries) == 0 {
				fmt.Println("No messages logged.")
				return nil
			}

			for _, e := range entries {
				ts := time.UnixMilli(e.ReceivedAt).Format("2006-01-02 15:04")
				fmt.Printf("%-8s %s  %s • %s\n    %s\n",
					verdictLabel(e.SpamStatus), ts, e.Source, e.From, e.Body)
			}
			fmt.Printf("\n%d entries\n", len(entries))
			return nil
		},
	}
}

func verdictLabel(status float64) string {
	switch status {
	case model.VerdictConfirmed:
		return "SPAM"
	case model.VerdictSuspected:
		return "SUSPECT"
	default:
		return "OK"
	}
}
