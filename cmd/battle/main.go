// Package main provides the battle binary: a command-line client for the
// AU Battle platform backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aubattle/battle-client/gateway"
	"github.com/aubattle/battle-client/internal/config"
	"github.com/aubattle/battle-client/internal/logger"
	"github.com/aubattle/battle-client/session"
	"github.com/aubattle/battle-client/tokenstore"
)

const appName = "AU Battle"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired client components for command handlers.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	gateway *gateway.Client
	manager *session.Manager
}

// newApp wires config, logging, gateway, token store, and session manager.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true})

	gw := gateway.New(cfg.BaseURL,
		gateway.WithWithdrawBaseURL(cfg.WithdrawBaseURL),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		gateway.WithLogger(log.With().Str("component", "gateway").Logger()),
	)

	storage, err := tokenstore.NewFileStorage(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	mgr, err := session.NewManager(gw, tokenstore.NewStore(storage),
		session.WithLogger(log.With().Str("component", "session").Logger()),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, gateway: gw, manager: mgr}, nil
}

// restored wires the app and restores the persisted session, failing the
// command when no session exists.
func restored(ctx context.Context) (*app, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.manager.Restore(ctx); err != nil {
		return nil, err
	}
	if !a.manager.State().Authenticated() {
		return nil, fmt.Errorf("not logged in; run 'battle login' first")
	}
	return a, nil
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "battle",
		Short:         "Command-line client for the AU Battle platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			figure.NewFigure(appName, "cybermedium", true).Print()
			fmt.Println()
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		loginCmd(),
		signupCmd(),
		logoutCmd(),
		whoamiCmd(),
		forgotPasswordCmd(),
		resetPasswordCmd(),
		profileCmd(),
		avatarCmd(),
		changePasswordCmd(),
		balanceCmd(),
		leaderboardCmd(),
		updatesCmd(),
		withdrawCmd(),
		historyCmd(),
	)
	return cmd
}
