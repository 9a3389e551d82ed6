package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baitbusters/smsguard/internal/alert"
	"github.com/baitbusters/smsguard/internal/classify"
	"github.com/baitbusters/smsguard/internal/config"
	"github.com/baitbusters/smsguard/internal/engine"
	"github.com/baitbusters/smsguard/internal/source"
	"github.com/baitbusters/smsguard/internal/storage"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the pipeline, reading event frames from stdin",
		Long: `Starts the classification pipeline. Event frames arrive as JSON lines on
stdin, one per event:

  {"event": "sms-received", "payload": {"senderPhoneNumber": "...", "messageBody": "..."}}
  {"event": "notification-received", "payload": {"packageName": "...", "title": "...", "text": "..."}}

The process exits when the event stream drains or on interrupt.`,
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
			vlog.ExpirePending(ctx, settings.PendingTTL, time.Now())

			classifier, err := classify.New(classify.Config{
				Provider:   viper.GetString("classifier.provider"),
				ModelPath:  config.ExpandPath(viper.GetString("classifier.model_path")),
				ServiceURL: viper.GetString("classifier.service_url"),
			})
			if err != nil {
				return err
			}

			eng := engine.New(vlog, classifier, alert.SlogDispatcher{}, settings)

			slog.Info("pipeline started",
				"store", settings.StorePath,
				"gateway", settings.Gateway,
				"log_entries", vlog.Len())

			listener := source.Start(ctx, source.NewJSONL(os.Stdin), eng.HandleEvent)
			defer listener.Stop()

			select {
			case <-ctx.Done():
			case <-listener.Done():
			}

			slog.Info("pipeline stopped", "log_entries", vlog.Len())
			return nil
		},
	}

	return cmd
}
