// Command portal runs the Algoritmia UP portal backend and its CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/algoritmia-up/portal/internal/config"
	"github.com/algoritmia-up/portal/pkg/logger"
)

// env holds what every subcommand needs once the root has run.
type env struct {
	cfg *config.Config
	log logger.Logger
	out io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Stderr.WriteString("portal: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	e := &env{out: out}
	var configPath string

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Algoritmia UP member portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd.Context(), configPath)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set PORTAL_CONFIG)")

	root.AddCommand(
		newServeCmd(e),
		newListCmd(e),
		newLeaderboardCmd(e),
		newWhoamiCmd(e),
		newLoginCmd(e),
		newLogoutCmd(e),
	)
	return root
}

// load reads .env, then the layered config, then sets up logging.
func (e *env) load(ctx context.Context, configPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if configPath != "" {
		if err := os.Setenv("PORTAL_CONFIG", configPath); err != nil {
			return err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Logs go to stderr so CLI output stays clean.
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	e.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		e.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	e.cfg = cfg
	return nil
}
