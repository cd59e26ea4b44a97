package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/promocanvas/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the composition API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, closeRunner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeRunner()

			led, closeLedger, err := c.newLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()
			if led == nil {
				c.Logger.Warn("no usage ledger configured; recording is disabled")
			}

			srv := server.New(server.Config{
				Runner:   runner,
				Ledger:   led,
				Defaults: c.defaultOptions(),
				Logger:   c.Logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the persistent image cache")
	return cmd
}
