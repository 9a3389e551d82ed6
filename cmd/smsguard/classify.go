package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baitbusters/smsguard/internal/classify"
	"github.com/baitbusters/smsguard/internal/config"
	"github.com/baitbusters/smsguard/internal/model"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Score a message text without touching the log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			classifier, err := classify.New(classify.Config{
				Provider:   viper.GetString("classifier.provider"),
				ModelPath:  config.ExpandPath(viper.GetString("classifier.model_path")),
				ServiceURL: viper.GetString("classifier.service_url"),
			})
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			p, err := classifier.Classify(cmd.Context(), text)
			if err != nil {
				return err
			}

			verdict := model.VerdictSuspected
			switch {
			case p > settings.ConfirmThreshold:
				verdict = model.VerdictConfirmed
			case p < settings.SuspectThreshold:
				verdict = model.VerdictClean
			}

			fmt.Printf("probability: %.3f\nverdict: %s\n", p, verdictLabel(verdict))
			return nil
		},
	}
}
