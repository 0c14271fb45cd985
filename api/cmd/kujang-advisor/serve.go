package main

import (
	"github.com/spf13/cobra"

	"kujang-advisor/api/internal/handle"
	"kujang-advisor/api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := newApp(ctx, cfg, true)
		defer a.Close()

		srv := server.New(cfg.Server, handle.New(a.advisor, a.history()),
			server.WithReadiness(a.ai.IsReady),
			server.WithInfo(server.Info{
				Backend: cfg.AI.Backend,
				Model:   cfg.AI.Model,
				History: a.repo != nil,
			}),
		)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
