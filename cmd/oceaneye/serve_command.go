package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oceaneye/internal/api"
	"oceaneye/internal/daemon"
	"oceaneye/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local identification API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if b := strings.TrimSpace(bind); b != "" {
				cfg.API.Bind = b
			}

			s, err := ctx.openStack(cmd, stackOptions{longRunning: true})
			if err != nil {
				return err
			}

			server, err := api.NewServer(cfg, s.identifier, s.logger)
			if err != nil {
				_ = s.Close()
				return err
			}
			d, err := daemon.New(cfg, server, s.logger, s)
			if err != nil {
				_ = s.Close()
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					s.logger.Warn("daemon close failed", logging.Error(err))
				}
			}()

			runCtx := cmd.Context()
			if err := d.Start(runCtx); err != nil {
				if errors.Is(err, daemon.ErrAlreadyRunning) {
					return fmt.Errorf("another oceaneye server holds %s", cfg.LockPath())
				}
				return err
			}
			status := d.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", status.Address)

			<-runCtx.Done()
			d.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Address to listen on (overrides api.bind)")
	return cmd
}
