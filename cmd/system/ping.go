package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/carwash_portal/config"
	"github.com/Alijeyrad/carwash_portal/pkg/backend"
)

// NewPingCommand checks that the configured backend answers. An anonymous
// GET /current-user is expected to be refused with 401/403; any HTTP answer
// at all proves the backend is reachable.
func NewPingCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the appointment backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client, err := backend.NewFromCentral(cfg.Backend)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			err = Ping(ctx, client)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %s reachable in %s\n", cfg.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up after this long")

	return cmd
}

// Ping reports whether the backend gave a non-5xx HTTP answer to
// GET /current-user.
func Ping(ctx context.Context, api backend.API) error {
	err := api.Get(ctx, "", "/current-user", nil, nil)
	status := backend.StatusOf(err)
	switch {
	case err == nil:
		return nil
	case status >= 500:
		return fmt.Errorf("backend answered with status %d: %w", status, err)
	case status != 0:
		return nil
	}
	return fmt.Errorf("backend unreachable: %w", err)
}
