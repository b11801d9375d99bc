package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/client"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/ipc"
	"github.com/robalobadob/hangman/internal/logging"
)

// goodbyeTimeout bounds how long a leaving client waits for its turn.
const goodbyeTimeout = 2 * time.Second

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "hangman-client",
		Short:         "Play hangman against a running hangman-server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Init(logLevel(cfg), cfg.Log.Format, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return play(ctx, cfg, cmd)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("hangman-client failed")
		os.Exit(1)
	}
}

// logLevel is the configured level, or warn when neither the config file
// nor the environment sets one: the terminal is the game board.
func logLevel(cfg config.Config) string {
	if cfg.Log.Level == "" {
		return "warn"
	}
	return cfg.Log.Level
}

func play(ctx context.Context, cfg config.Config, cmd *cobra.Command) error {
	ch, err := ipc.Open(cfg.Names())
	if err != nil {
		return err
	}
	defer ch.Close()

	c := client.New(ch)
	tally, err := client.Play(ctx, c, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, ipc.ErrShutdown) {
		return err
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nYou have won %d games and lost %d. Bye bye!\n", tally.Won, tally.Lost)
		err = nil
	}

	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), goodbyeTimeout)
	defer cancel()
	if qerr := c.Quit(qctx); qerr != nil {
		log.Warn().Err(qerr).Msg("could not say goodbye to the server")
	}
	return err
}
