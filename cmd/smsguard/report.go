package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baitbusters/smsguard/internal/protocol"
	"github.com/baitbusters/smsguard/internal/storage"
	"github.com/baitbusters/smsguard/internal/transport"
)

// reportCmd sends the report envelope for a logged entry to the
// verification gateway. In the alerting flow this send is attached to the
// actionable alert; the command covers headless deployments and retries
// after a failed send.
func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <entry-id>",
		Short: "Send the report envelope for a suspected entry to the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			entry, ok := vlog.Get(args[0])
			if !ok {
				return fmt.Errorf("no entry with id %s", args[0])
			}

			var sender transport.Sender = transport.SlogSender{}
			if relay := viper.GetString("gateway.relay_url"); relay != "" {
				sender = transport.NewHTTPSender(relay)
			}

			reporter := protocol.NewReporter(sender, settings.Gateway)
			if err := reporter.Report(ctx, entry); err != nil {
				return err
			}

			fmt.Printf("Reported entry %s to %s.\n", entry.ID, settings.Gateway)
			return nil
		},
	}
}
