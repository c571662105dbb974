package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/scene"
)

type generateOpts struct {
	size        int
	seed        uint64
	maxAttempts int
	output      string
	noStore     bool
}

// generateCommand creates the generate command, which draws a DNA set and
// writes it to the DNA file.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a set of unique DNA vectors",
		Long: `Generate draws unique trait combinations, forcing the Eye slot to match the
EyeLid slot, and writes them to the DNA file as a JSON array of 7-integer arrays.

The Pattern slot size is the number of Body materials in the scene unless
slots.pattern is set in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("count") {
				cfg.OutputSize = opts.size
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = opts.seed
			}
			if cmd.Flags().Changed("max-attempts") {
				cfg.MaxAttempts = opts.maxAttempts
			}
			if opts.output != "" {
				cfg.DNAFile = opts.output
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), cfg, !opts.noStore)
		},
	}

	cmd.Flags().IntVarP(&opts.size, "count", "n", 0, "number of vectors (default output_size)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the clock")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "draw limit, 0 derives one from the count")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "DNA file to write (default dna_file)")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not copy the set into the store")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, cfg Config, save bool) error {
	var sc *scene.Scene
	if cfg.Slots.Pattern == 0 {
		var err error
		if sc, err = scene.Load(cfg.SceneFile); err != nil {
			return err
		}
	}
	bank, err := cfg.bank(sc)
	if err != nil {
		return err
	}
	if sc != nil {
		if err := scene.CheckBank(sc, bank); err != nil {
			return err
		}
	}

	gen, err := dna.NewGenerator(bank, dna.Options{Seed: cfg.Seed, MaxAttempts: cfg.MaxAttempts, Logger: c.Logger})
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Generating %d vectors...", cfg.OutputSize))
	spinner.Start()
	set, err := gen.Set(ctx, cfg.OutputSize)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if err := dna.WriteFile(cfg.DNAFile, set); err != nil {
		return err
	}
	prog.done("generated dna set", "vectors", len(set), "file", cfg.DNAFile)

	if save {
		st, err := c.openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveSet(ctx, cfg.SetName, set); err != nil {
			return err
		}
	}

	sum := dna.Summarize(set, bank)
	printSuccess("Wrote %s", cfg.DNAFile)
	printSetStats(sum.Size, sum.Capacity, sum.Coverage())
	if _, err := os.Stat(cfg.SceneFile); err == nil {
		printNextStep("Render the first batch", appName+" render")
	} else {
		printNextStep("Inspect the set", appName+" inspect")
	}
	return nil
}
