// Package cli implements the traitforge command-line interface.
//
// # Commands
//
//   - generate: draw a unique DNA set and write the DNA file
//   - render: apply DNA to the scene and trigger renders in batches
//   - inspect: show set statistics or one configured vector
//   - browse: page through a DNA set interactively
//   - serve: expose a DNA set over HTTP
//
// Settings come from traitforge.toml (see [Config]); flags override them.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Libraries get
// the CLI's logger explicitly.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/buildinfo"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
	"github.com/matzehuels/traitforge/pkg/scene"
	"github.com/matzehuels/traitforge/pkg/store"
)

// appName is the application name used for display.
const appName = "traitforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance logging to w and registers log-backed
// observability hooks.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	registerHooks(c.Logger)
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "traitforge generates unique character DNA and drives batch renders",
		Long:          `traitforge draws unique trait combinations for a character collection, maps each one onto a scene of interchangeable parts and materials, and triggers the renders in timed batches.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+defaultConfigFile+")")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the config file selected by --config.
func (c *CLI) config() (Config, error) {
	return loadConfig(c.configPath, c.configPath != "")
}

// =============================================================================
// Input Loading
// =============================================================================

// inputs bundles what most commands read from disk.
type inputs struct {
	cfg    Config
	set    dna.Set
	bank   dna.Bank
	scene  *scene.Scene
	colors *palette.Table
}

// loadInputs reads the DNA file, the scene and the color table named in cfg
// and checks them against each other. When the DNA file does not exist the
// set saved under cfg.SetName in the configured store is used instead, so a
// machine that only shares the store can render or serve the set.
func (c *CLI) loadInputs(ctx context.Context, cfg Config) (*inputs, error) {
	in := &inputs{cfg: cfg}
	var err error

	if in.scene, err = scene.Load(cfg.SceneFile); err != nil {
		return nil, err
	}
	if in.colors, err = palette.LoadFile(cfg.ColorsFile); err != nil {
		return nil, err
	}
	if in.bank, err = cfg.bank(in.scene); err != nil {
		return nil, err
	}
	if err := scene.CheckBank(in.scene, in.bank); err != nil {
		return nil, err
	}
	if in.set, err = c.readSet(ctx, cfg); err != nil {
		return nil, err
	}
	if err := in.set.Validate(in.bank); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded inputs",
		"dna", cfg.DNAFile, "vectors", len(in.set),
		"scene", cfg.SceneFile, "groups", len(in.scene.Parts),
		"colors", in.colors.Len())
	return in, nil
}

// readSet reads the DNA file, falling back to the store when the file is
// missing. A set found in neither place reports the missing file.
func (c *CLI) readSet(ctx context.Context, cfg Config) (dna.Set, error) {
	set, err := dna.ReadFile(cfg.DNAFile)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		return set, err
	}

	st, serr := c.openStore(ctx, cfg)
	if serr != nil {
		return nil, serr
	}
	defer st.Close()

	stored, hit, serr := st.LoadSet(ctx, cfg.SetName)
	if serr != nil {
		return nil, serr
	}
	if !hit {
		return nil, err
	}
	c.Logger.Info("dna file missing, using stored set", "file", cfg.DNAFile, "set", cfg.SetName, "vectors", len(stored))
	return stored, nil
}

// openStore opens the checkpoint store named in cfg.
func (c *CLI) openStore(ctx context.Context, cfg Config) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Store, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "url", cfg.Store)
	return s, nil
}
