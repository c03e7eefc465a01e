package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/replay"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/config"
)

// newLogger builds a zap logger from the engine config's logging
// section: JSON to stderr, or to cfg.Logging.File when set.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Logging.File != "" {
		zcfg.OutputPaths = []string{cfg.Logging.File}
	}
	return zcfg.Build()
}

func main() {
	rootCmd := &cobra.Command{Use: "replay"}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(configCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [fixture.json]",
		Short: "replay one transaction's PTB against a local object fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			f, err := loadFixture(args[0])
			if err != nil {
				return err
			}
			in, err := f.toInput()
			if err != nil {
				return fmt.Errorf("convert fixture: %w", err)
			}

			logger, err := newLogger(*cfg)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			engine := replay.New(*cfg, nil, nil).WithLogger(logger)
			result, err := engine.Replay(in)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().String("env", "", "environment overlay config name (merged over default.yaml)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config"}
	show := &cobra.Command{
		Use:   "show",
		Short: "print the resolved engine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	show.Flags().String("env", "", "environment overlay config name")
	cmd.AddCommand(show)
	return cmd
}
