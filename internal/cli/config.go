package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/traitforge/pkg/batch"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/render"
	"github.com/matzehuels/traitforge/pkg/scene"
	"github.com/matzehuels/traitforge/pkg/store"
)

// defaultConfigFile is read from the working directory when --config is
// not given. It may be absent.
const defaultConfigFile = "traitforge.toml"

// Renderer names accepted in the config file.
const (
	rendererManifest = "manifest"
	rendererGraph    = "graph"
	rendererCommand  = "command"
)

// Config is the traitforge.toml file. Zero values are replaced by the
// defaults from [defaultConfig] before validation.
type Config struct {
	DNAFile       string   `toml:"dna_file"`
	ColorsFile    string   `toml:"colors_file"`
	SceneFile     string   `toml:"scene_file"`
	OutputPrefix  string   `toml:"output_prefix"`
	OutputSize    int      `toml:"output_size"`
	BatchSize     int      `toml:"batch_size"`
	StartID       int      `toml:"start_id"`
	RenderDelay   duration `toml:"render_delay"`
	RenderRetries int      `toml:"render_retries"`
	Seed          uint64   `toml:"seed"`
	MaxAttempts   int      `toml:"max_attempts"`
	Store         string   `toml:"store"`
	SetName       string   `toml:"set_name"`
	Renderer      string   `toml:"renderer"`
	GraphFormat   string   `toml:"graph_format"`
	Command       []string `toml:"command"`
	Slots         Slots    `toml:"slots"`
}

// Slots holds the slot sizes. Pattern 0 means "count the body materials of
// the scene".
type Slots struct {
	Head    int `toml:"head"`
	Arm     int `toml:"arm"`
	Leg     int `toml:"leg"`
	EyeLid  int `toml:"eyelid"`
	Eye     int `toml:"eye"`
	Pattern int `toml:"pattern"`
	Color   int `toml:"color"`
}

// duration decodes Go duration strings such as "195s" or "3m15s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func defaultConfig() Config {
	return Config{
		DNAFile:       "dna.json",
		ColorsFile:    "colors.json",
		SceneFile:     "scene.toml",
		OutputPrefix:  "renders/",
		OutputSize:    1000,
		BatchSize:     batch.DefaultSize,
		StartID:       1,
		RenderDelay:   duration{batch.DefaultDelay},
		RenderRetries: batch.DefaultRetries,
		Store:         "file://.traitforge",
		SetName:       store.DefaultSetName,
		Renderer:      rendererManifest,
		GraphFormat:   render.FormatSVG,
		Slots: Slots{
			Head:   dna.DefaultPartSize,
			Arm:    dna.DefaultPartSize,
			Leg:    dna.DefaultPartSize,
			EyeLid: dna.DefaultPartSize,
			Eye:    dna.DefaultPartSize,
			Color:  dna.DefaultColorSize,
		},
	}
}

// loadConfig reads the config at path on top of the defaults. A missing
// file is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		return cfg, cfg.validate()
	case os.IsNotExist(err):
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeStorage, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeParse, err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for name, p := range map[string]string{"dna_file": c.DNAFile, "colors_file": c.ColorsFile, "scene_file": c.SceneFile} {
		if err := errors.ValidatePath(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
		}
	}
	switch {
	case c.OutputSize < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "output_size must be positive, got %d", c.OutputSize)
	case c.BatchSize < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "batch_size must be positive, got %d", c.BatchSize)
	case c.StartID < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "start_id must be at least 1, got %d", c.StartID)
	case c.RenderDelay.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render_delay must not be negative")
	case c.RenderRetries < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render_retries must not be negative")
	case c.MaxAttempts < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_attempts must not be negative")
	}
	switch c.Renderer {
	case rendererManifest, rendererGraph:
	case rendererCommand:
		if len(c.Command) == 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "renderer %q needs a command", c.Renderer)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown renderer %q (want manifest, graph or command)", c.Renderer)
	}
	if c.GraphFormat != render.FormatSVG && c.GraphFormat != render.FormatPNG {
		return errors.New(errors.ErrCodeInvalidConfig, "graph_format must be %s or %s, got %q", render.FormatSVG, render.FormatPNG, c.GraphFormat)
	}
	if _, err := store.Scheme(c.Store); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store")
	}
	if err := errors.ValidateSetName(c.SetName); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "set_name")
	}
	if c.Slots.Pattern < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "slots.pattern must not be negative")
	}
	return nil
}

// bank returns the slot sizes, taking the pattern count from s when the
// config leaves it at 0. s may be nil when the pattern size is set.
func (c Config) bank(s *scene.Scene) (dna.Bank, error) {
	patterns := c.Slots.Pattern
	if patterns == 0 {
		if s == nil {
			return dna.Bank{}, errors.New(errors.ErrCodeInvalidConfig, "slots.pattern is 0 and no scene is loaded to count body materials")
		}
		patterns = s.PatternCount()
	}
	b := dna.Bank{
		dna.Head:    c.Slots.Head,
		dna.Arm:     c.Slots.Arm,
		dna.Leg:     c.Slots.Leg,
		dna.EyeLid:  c.Slots.EyeLid,
		dna.Eye:     c.Slots.Eye,
		dna.Pattern: patterns,
		dna.Color:   c.Slots.Color,
	}
	return b, b.Check()
}

// retries maps the config value to batch options, where 0 means default.
func (c Config) retries() int {
	if c.RenderRetries == 0 {
		return -1
	}
	return c.RenderRetries
}

// delay maps the config value to batch options, where 0 means default.
func (c Config) delay() time.Duration {
	if c.RenderDelay.Duration == 0 {
		return -1
	}
	return c.RenderDelay.Duration
}
