package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deusflow/newsbot/internal/app"
	"github.com/deusflow/newsbot/internal/config"
	"github.com/deusflow/newsbot/internal/curator"
	"github.com/deusflow/newsbot/internal/logger"
)

func main() {
	root := &cobra.Command{
		Use:           "newsbot",
		Short:         "newsbot - daily news clipping curator",
		Long:          "Collects news for a keyword catalog, lets a curator review and summarize it, and posts the selection to a chat channel.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		collectCmd(),
		categoriesCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads config and the logger. The returned func closes the log file.
func setup() (*config.Config, *logrus.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	log, closer, err := logger.New(cfg.LogLevel, cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, func() { _ = closer.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the curator web UI and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()
			if addrFlag != "" {
				cfg.HTTPAddr = addrFlag
			}

			ctx, cancel := signalContext()
			defer cancel()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func collectCmd() *cobra.Command {
	var (
		categories []string
		keywords   []string
		publishAll bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run one collection and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signalContext()
			defer cancel()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.Collect(ctx, curator.Plan{Categories: categories, Keywords: keywords})
			if err != nil {
				return err
			}

			out := map[string]interface{}{
				"result":   res,
				"articles": a.Service.ListArticles(),
			}

			if publishAll {
				for _, art := range a.Service.ListArticles() {
					a.Service.SetSelected(art.URL, true)
				}
				pub, err := a.Service.PublishSelected(ctx)
				if err != nil {
					return err
				}
				out["publish"] = pub
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "categories to collect (repeatable, default all)")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "restrict to these keywords")
	cmd.Flags().BoolVar(&publishAll, "publish", false, "select every collected article and publish it")
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the keyword catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cat, err := app.LoadCatalog(cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, name := range cat.Names() {
				kws, _ := cat.KeywordsForCategory(name)
				marker := ""
				if name == cat.DefaultCategory() {
					marker = " (default)"
				}
				if len(kws) == 0 {
					kws = []string{"-"}
				}
				fmt.Fprintf(w, "%s%s: %s\n", name, marker, strings.Join(kws, ", "))
			}
			return nil
		},
	}
}
