package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/matheuskafuri/lexis/internal/server"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reader as a JSON API",
	Long: `Expose topics, article generation, narration, the vocabulary bank and the study
history over HTTP for a browser front end.

Listens on server.addr from config (default 127.0.0.1:8080) unless overridden with --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.ServerAddr()
		if flagAddr != "" {
			addr = flagAddr
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(e.sess, server.Options{
			Store:          e.store,
			AllowedOrigins: e.cfg.Server.AllowedOrigins,
			SampleRate:     e.cfg.SampleRate(),
			Logger:         e.log,
		})
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (e.g., :8080)")
}
