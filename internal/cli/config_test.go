package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/traitforge/pkg/batch"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/scene"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traitforge.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")

	cfg, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config: %v", err)
	}
	if cfg.BatchSize != batch.DefaultSize || cfg.RenderDelay.Duration != batch.DefaultDelay || cfg.OutputSize != 1000 {
		t.Errorf("defaults = %+v", cfg)
	}

	if _, err := loadConfig(missing, true); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing config error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
dna_file = "out/dna.json"
batch_size = 10
render_delay = "3m15s"
renderer = "command"
command = ["echo", "{id}"]

[slots]
pattern = 4
color = 20
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DNAFile != "out/dna.json" || cfg.BatchSize != 10 || cfg.RenderDelay.Duration != 195*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SceneFile != "scene.toml" || cfg.Slots.Head != dna.DefaultPartSize {
		t.Error("unset keys should keep defaults")
	}

	b, err := cfg.bank(nil)
	if err != nil {
		t.Fatal(err)
	}
	if b[dna.Pattern] != 4 || b[dna.Color] != 20 {
		t.Errorf("bank = %v", b)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want errors.Code
	}{
		{"syntax", `batch_size = `, errors.ErrCodeParse},
		{"bad duration", `render_delay = "soon"`, errors.ErrCodeParse},
		{"unknown key", `bogus = 1`, errors.ErrCodeInvalidConfig},
		{"zero batch", `batch_size = 0`, errors.ErrCodeInvalidConfig},
		{"zero start", `start_id = 0`, errors.ErrCodeInvalidConfig},
		{"unknown renderer", `renderer = "cycles"`, errors.ErrCodeInvalidConfig},
		{"command without args", `renderer = "command"`, errors.ErrCodeInvalidConfig},
		{"bad graph format", `graph_format = "gif"`, errors.ErrCodeInvalidConfig},
		{"bad store", `store = "s3://bucket"`, errors.ErrCodeInvalidConfig},
		{"bad set name", `set_name = "../up"`, errors.ErrCodeInvalidConfig},
		{"negative pattern", "[slots]\npattern = -1", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestConfigBankFromScene(t *testing.T) {
	cfg := defaultConfig()
	if _, err := cfg.bank(nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bank without scene = %v, want INVALID_CONFIG", err)
	}

	sc, err := scene.Load(filepath.Join("testdata", "scene.toml"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.bank(sc)
	if err != nil {
		t.Fatal(err)
	}
	if b[dna.Pattern] != 2 {
		t.Errorf("pattern size = %d, want 2", b[dna.Pattern])
	}
	if err := scene.CheckBank(sc, b); err != nil {
		t.Errorf("sample scene does not match its bank: %v", err)
	}
}

func TestConfigBatchMapping(t *testing.T) {
	cfg := defaultConfig()
	if cfg.retries() != batch.DefaultRetries || cfg.delay() != batch.DefaultDelay {
		t.Errorf("defaults map to %d, %s", cfg.retries(), cfg.delay())
	}
	cfg.RenderRetries = 0
	cfg.RenderDelay = duration{}
	if cfg.retries() >= 0 || cfg.delay() >= 0 {
		t.Errorf("zero values should disable, got %d, %s", cfg.retries(), cfg.delay())
	}
}
