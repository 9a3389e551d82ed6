package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baitbusters/smsguard/internal/storage"
)

func clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear [entry-id]",
		Short: "Delete one entry, or the whole verdict log",
		Args:  cobra.MaximumNArgs(1),
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

			if len(args) == 1 {
				if err := vlog.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed entry %s.\n", args[0])
				return nil
			}

			if !yes {
				return fmt.Errorf("refusing to clear the whole log without --yes")
			}

			n := vlog.Len()
			if err := vlog.Clear(ctx); err != nil {
				return err
			}

			fmt.Printf("Cleared %d entries.\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the whole log")
	return cmd
}
