package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/server"
)

// serveCommand creates the serve command, which exposes the DNA set and
// per-vector manifests and previews over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the DNA set over HTTP",
		Long: `Serve exposes the loaded DNA set read-only:

  GET /healthz              liveness
  GET /dna                  set size, capacity and slot sizes
  GET /dna/{id}             one vector
  GET /dna/{id}/manifest    configured scene state for the vector
  GET /dna/{id}/preview     SVG of the configured part tree (?hidden=1 shows hidden variants)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			in, err := c.loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Set:          in.set,
				Bank:         in.bank,
				Scene:        in.scene,
				Colors:       in.colors,
				OutputPrefix: cfg.OutputPrefix,
				Logger:       c.Logger,
			})
			printInfo("Serving %d vectors on %s", len(in.set), addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
