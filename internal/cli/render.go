package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/batch"
	"github.com/matzehuels/traitforge/pkg/configure"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	start    int           // first job id
	size     int           // jobs in the batch
	delay    time.Duration // wait between jobs
	retries  int           // retries per failed render
	renderer string        // manifest, graph or command
	prefix   string        // output path prefix
	resume   bool          // continue from the stored checkpoint
	all      bool          // render every remaining vector
	noWait   bool          // skip the delay between jobs
}

// renderCommand creates the render command. It configures the scene for
// each DNA of the batch in turn and triggers the configured renderer.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Configure and render a batch of DNA vectors",
		Long: `Render applies DNA vectors start_id through start_id+batch_size-1 to the scene
and triggers one render per vector, waiting render_delay between them.

Renderers:
  manifest  write <prefix><id>.json with the configured scene state
  graph     draw the configured part tree as <prefix><id>.svg
  command   write the manifest, then run the configured host command
            ({output}, {manifest} and {id} are substituted)

After each job a checkpoint is saved to the store; --resume continues from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("start") {
				cfg.StartID = opts.start
			}
			if flags.Changed("batch") {
				cfg.BatchSize = opts.size
			}
			if flags.Changed("delay") {
				cfg.RenderDelay = duration{opts.delay}
			}
			if flags.Changed("retries") {
				cfg.RenderRetries = opts.retries
			}
			if opts.noWait {
				cfg.RenderDelay = duration{0}
			}
			if opts.renderer != "" {
				cfg.Renderer = opts.renderer
			}
			if opts.prefix != "" {
				cfg.OutputPrefix = opts.prefix
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().IntVar(&opts.start, "start", 0, "first DNA id to render (default start_id)")
	cmd.Flags().IntVar(&opts.size, "batch", 0, "number of DNA vectors to render (default batch_size)")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "wait between renders (default render_delay)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "retries for a failed render (default render_retries)")
	cmd.Flags().StringVarP(&opts.renderer, "renderer", "r", "", "renderer: manifest, graph, command (default renderer)")
	cmd.Flags().StringVarP(&opts.prefix, "output", "o", "", "output path prefix (default output_prefix)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "continue from the stored checkpoint")
	cmd.Flags().BoolVar(&opts.all, "all", false, "render every vector from the start id to the end of the set")
	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "do not wait between renders")

	return cmd
}

// newRenderer builds the renderer named in cfg.
func (c *CLI) newRenderer(cfg Config) (render.Renderer, error) {
	switch cfg.Renderer {
	case rendererManifest:
		return render.ManifestRenderer{Logger: c.Logger}, nil
	case rendererGraph:
		return render.Multi{
			render.ManifestRenderer{Logger: c.Logger},
			render.GraphRenderer{Format: cfg.GraphFormat, Logger: c.Logger},
		}, nil
	case rendererCommand:
		return render.CommandRenderer{Args: cfg.Command, Logger: c.Logger}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown renderer %q", cfg.Renderer)
}

func (c *CLI) runRender(ctx context.Context, cfg Config, opts renderOpts) error {
	in, err := c.loadInputs(ctx, cfg)
	if err != nil {
		return err
	}
	renderer, err := c.newRenderer(cfg)
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	size := cfg.BatchSize
	if opts.all {
		// Batches end at the last vector of the set.
		size = len(in.set)
	}

	driver, err := batch.NewDriver(in.set, configure.New(in.scene, in.colors, c.Logger), renderer, batch.Options{
		Start:        cfg.StartID,
		Size:         size,
		Delay:        cfg.delay(),
		Retries:      cfg.retries(),
		OutputPrefix: cfg.OutputPrefix,
		SetName:      cfg.SetName,
		Store:        st,
		Logger:       c.Logger,
	})
	if err != nil {
		return err
	}

	resumed := false
	if opts.resume {
		if resumed, err = driver.ResumeFromCheckpoint(ctx); err != nil {
			return err
		}
		if !resumed {
			printWarning("No checkpoint for %q, starting at %d", cfg.SetName, driver.Cursor())
		}
	}
	if driver.Cursor() > len(in.set) {
		if resumed {
			printInfo("All %d vectors are rendered", len(in.set))
			return nil
		}
		_, err := in.set.At(driver.Cursor())
		return err
	}

	first, end := driver.Cursor(), driver.End()
	printInfo("Rendering %d to %d of %d", first, end-1, len(in.set))
	printKeyValue("renderer", cfg.Renderer)
	printKeyValue("store", cfg.Store)
	printKeyValue("run", driver.RunID())
	prog := newProgress(c.Logger)

	if err := batch.Run(ctx, driver, countdown("Next render")); err != nil {
		if errors.Is(err, errors.ErrCodeRender) {
			printError("Render of %d failed", driver.Cursor())
			printNextStep("Retry from the failed job", appName+" render --resume")
		}
		return err
	}

	done := driver.Cursor() - first
	printSuccess("Rendered %d %s", done, plural(done, "vector", "vectors"))
	printFile(render.OutputPath(cfg.OutputPrefix, first) + " " + iconArrow + " " + render.OutputPath(cfg.OutputPrefix, driver.Cursor()-1))
	printDetail("finished in %s", prog.elapsed())
	if driver.Cursor() <= len(in.set) {
		printNextStep("Render the next batch", appName+" render --resume")
	}
	return nil
}
