// internal/commands/connection.go
package biasprobe

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/biasprobe/internal/appconfig"
	"github.com/mwiater/biasprobe/internal/providerfactory"
	"github.com/mwiater/biasprobe/internal/providers"
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Verify the configured provider endpoint is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return testConnection(cmd.OutOrStdout(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(connectionCmd)
}

// testConnection builds a client from the configuration and probes the
// provider endpoint.
func testConnection(out io.Writer, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	defaults := providers.DefaultSettings()
	defaults.Model = cfg.Model
	defaults.Timeout = cfg.RequestTimeout()

	client, err := providerfactory.NewModelClient(
		providers.Credentials{
			Provider: cfg.Provider,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
		},
		defaults,
		providers.DefaultRetryPolicy(),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	if err := client.TestConnection(ctx); err != nil {
		fmt.Fprintf(out, "%s %s (%s): %v\n", color.RedString("UNREACHABLE"), cfg.Provider, cfg.Model, err)
		return err
	}
	fmt.Fprintf(out, "%s %s (%s)\n", color.GreenString("OK"), cfg.Provider, cfg.Model)
	return nil
}
