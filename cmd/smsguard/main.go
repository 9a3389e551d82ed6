package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baitbusters/smsguard/internal/common"
	"github.com/baitbusters/smsguard/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "smsguard",
		Short: "On-device phishing message detection pipeline",
		Long: `smsguard ingests SMS and messaging-app notification events, classifies
each message as clean, suspected, or confirmed phishing, and reconciles
asynchronous confirmation replies from the verification gateway back into
its verdict log.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/smsguard/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(logsCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Local overrides first, so SMSGUARD_* vars from .env win over the
	// config file.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/smsguard", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SMSGUARD")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults.
	}

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setDefaults() {
	defaults := config.Default()
	viper.SetDefault("storage.path", defaults.StorePath)
	viper.SetDefault("gateway.address", defaults.Gateway)
	viper.SetDefault("gateway.region", defaults.Region)
	viper.SetDefault("gateway.sentinel", defaults.Sentinel)
	viper.SetDefault("gateway.relay_url", "")
	viper.SetDefault("classifier.provider", "local")
	viper.SetDefault("classifier.model_path", "~/.local/share/smsguard/weights.json")
	viper.SetDefault("classifier.service_url", "")
	viper.SetDefault("classifier.suspect_threshold", defaults.SuspectThreshold)
	viper.SetDefault("classifier.confirm_threshold", defaults.ConfirmThreshold)
	viper.SetDefault("log.capacity", defaults.LogCapacity)
	viper.SetDefault("log.pending_ttl", time.Duration(0))
	viper.SetDefault("alerts.enabled", defaults.AlertsEnabled)
}

func loadSettings() (config.Settings, error) {
	settings := config.Settings{
		StorePath:        config.ExpandPath(viper.GetString("storage.path")),
		Gateway:          viper.GetString("gateway.address"),
		Region:           viper.GetString("gateway.region"),
		Sentinel:         viper.GetString("gateway.sentinel"),
		SuspectThreshold: viper.GetFloat64("classifier.suspect_threshold"),
		ConfirmThreshold: viper.GetFloat64("classifier.confirm_threshold"),
		LogCapacity:      viper.GetInt("log.capacity"),
		PendingTTL:       viper.GetDuration("log.pending_ttl"),
		AlertsEnabled:    viper.GetBool("alerts.enabled"),
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("smsguard %s\n", version)
		},
	}
}
