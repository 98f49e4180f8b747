package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/mithrel/medic/internal/server"
)

func newServeCmd() *cobra.Command {
	var listen string
	var challengeAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx := cmd.Context()
			addr := listen
			if addr == "" {
				addr = app.Cfg.GetString("http_addr")
			}
			if addr == "" {
				addr = ":8080"
			}
			srv := server.New(app.Cfg, app.Assistant, app.Store, app.Log)

			domains := app.Cfg.GetStringSlice("tls.domains")
			if len(domains) == 0 {
				l, err := net.Listen("tcp", addr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "medic listening on http://%s\n", l.Addr())
				return srv.Serve(ctx, l, nil)
			}

			tlsConf, challenges, err := server.BuildCertMagicTLS(ctx, server.CertMagicConfig{
				Domains:    domains,
				Email:      app.Cfg.GetString("tls.email"),
				StorageDir: app.Cfg.GetString("tls.storage_dir"),
			})
			if err != nil {
				return fmt.Errorf("tls: %w", err)
			}
			go func() {
				if err := server.ServeChallenges(ctx, challengeAddr, challenges); err != nil {
					app.Log.Printf("acme challenge listener: %v", err)
				}
			}()
			l, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "medic listening on https://%s (%s)\n", domains[0], l.Addr())
			return srv.Serve(ctx, l, tlsConf)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides http_addr)")
	cmd.Flags().StringVar(&challengeAddr, "acme-listen", ":80", "listen address for ACME HTTP-01 challenges and the HTTPS redirect")
	return cmd
}
