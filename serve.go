package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/transcript-analyzer/server"
	"github.com/maastricht-university/transcript-analyzer/store"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}
		st, err := store.Open(ctx, conf.Store)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())

		if port == 0 {
			port = conf.Server.Port
		}
		log.WithField("store", conf.Store.Driver).Info("analysis store ready")
		return server.NewServer(p, st, port, log).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default server.port)")
}
