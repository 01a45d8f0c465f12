package http

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/internal/api/http"
	"github.com/Alijeyrad/carwash_portal/pkg/logs"
)

func NewStartCommand() *cobra.Command {
	var (
		shutdownTimeout time.Duration
		verbose         bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}

			// Set up structured logger before fx starts so all logs use it.
			slog.SetDefault(logs.New(cfg))

			var opts []fx.Option
			if !verbose {
				opts = append(opts, fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }))
			}
			http.Start(cfg, shutdownTimeout, opts...)
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")
	cmd.Flags().BoolVar(&verbose, "fx-verbose", false, "Log dependency injection events")

	return cmd
}
