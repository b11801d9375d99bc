package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/admin"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/ipc"
	"github.com/robalobadob/hangman/internal/logging"
	"github.com/robalobadob/hangman/internal/metrics"
	"github.com/robalobadob/hangman/internal/server"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	root := serveCmd()
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("hangman-server failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		configPath string
		reclaim    bool
	)

	cmd := &cobra.Command{
		Use:   "hangman-server [corpus-file]",
		Short: "Serve hangman rounds to local clients over shared memory",
		Long: `hangman-server reads a word list, one word per line, from the given
file or from standard input, and serves hangman rounds to every
hangman-client started on this machine.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			corpus, err := loadCorpus(ctx, args, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return serve(ctx, cfg, corpus, reclaim)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().BoolVar(&reclaim, "reclaim", false, "Remove shared objects left behind by a crashed server")

	return cmd
}

func loadCorpus(ctx context.Context, args []string, in io.Reader, out io.Writer) (*words.Corpus, error) {
	if len(args) == 1 {
		return words.ReadFile(args[0])
	}
	fmt.Fprintln(out, "Please enter the game dictionary and finish with EOF")
	corpus, err := words.LoadContext(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("read dictionary from stdin: %w", err)
	}
	fmt.Fprintln(out, "Successfully read the dictionary. Ready.")
	return corpus, nil
}

func serve(ctx context.Context, cfg config.Config, corpus *words.Corpus, reclaim bool) error {
	st, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	names := cfg.Names()
	if reclaim {
		if err := ipc.Reclaim(names); err != nil {
			log.Warn().Err(err).Msg("reclaim shared objects")
		}
	}
	ch, err := ipc.Create(names)
	if err != nil {
		return fmt.Errorf("create shared objects (stale objects can be removed with --reclaim): %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv := server.New(corpus, ch, server.Options{Store: st, Metrics: metrics.New(reg)})
	log.Info().Int("words", corpus.Len()).Str("segment", names.Segment()).Msg("dictionary loaded")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		api      *admin.Server
		apiErr   = make(chan error, 1)
		startErr error
	)
	if cfg.Admin.Addr != "" {
		if cfg.Admin.Secret == "" {
			log.Warn().Msg("admin api has no secret, diagnostics are open")
		}
		api = admin.New(srv, reg, cfg.Admin.Secret)
		go func() {
			err := api.Start(cfg.Admin.Addr)
			if err != nil {
				err = fmt.Errorf("admin api: %w", err)
				cancel()
			}
			apiErr <- err
		}()
	}

	runErr := srv.Run(ctx)
	closeErr := srv.Close()

	if api != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer scancel()
		if err := api.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("admin api shutdown")
		}
		startErr = <-apiErr
	}
	return errors.Join(runErr, closeErr, startErr)
}

func openStore(path string) (store.Store, error) {
	if path == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open results ledger: %w", err)
	}
	log.Info().Str("path", path).Msg("results ledger opened")
	return st, nil
}

func tokenCmd() *cobra.Command {
	var (
		configPath string
		ttl        time.Duration
		subject    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Admin.Secret == "" {
				return errors.New("HANGMAN_ADMIN_SECRET is not set")
			}
			tok, exp, err := admin.SignToken(cfg.Admin.Secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")

	return cmd
}
