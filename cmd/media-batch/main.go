// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the media-batch CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-batch/internal/config"
	"github.com/pdiddy/media-batch/internal/logging"
	"github.com/pdiddy/media-batch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the media-batch CLI.
var rootCmd = &cobra.Command{
	Use:   "media-batch",
	Short: "Grayscale images and smooth signal tables in a directory",
	Long: `media-batch processes a directory of mixed media files. Images are
converted to single-channel grayscale; CSV signal tables get a centered
moving-average column appended. Every output is written under the output
directory with the input's file name.

Configuration comes from flags, MEDIA_BATCH_* environment variables, and
media-batch.yaml in the working directory or ~/.config/media-batch/.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./media-batch.yaml or ~/.config/media-batch/media-batch.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(config.FileName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", config.FileName))
		}
	}

	config.Setup(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the named flags of cmd to viper keys. It runs from the
// executing command's PreRunE so commands sharing a key do not override
// each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for name, key := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return fmt.Errorf("binding flag --%s: not defined on %s", name, cmd.Name())
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig resolves and validates the configuration and returns it with a
// logger writing to stderr.
func loadConfig() (types.PipelineConfig, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return types.PipelineConfig{}, nil, err
	}
	return cfg, logging.New(cfg.Log, os.Stderr), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
