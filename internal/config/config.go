// Package config loads and validates meshfield settings.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/particle"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

//go:embed config.schema.json
var schemaJSON string

// Environment variables read by ApplyEnv.
const (
	EnvReducedMotion = "MESHFIELD_REDUCED_MOTION"
	EnvWaitlistDB    = "MESHFIELD_WAITLIST_DB"
	EnvVariant       = "MESHFIELD_VARIANT"
)

type Config struct {
	// Which preset to animate
	Variant string `json:"variant"`
	// Seed 0 means seed from the clock
	Seed    uint64 `json:"seed"`

	// Host accessibility signal, read once at mount
	ReducedMotion bool   `json:"reducedMotion"`
	ResizePolicy  string `json:"resizePolicy"`
	FrameRate     int    `json:"frameRate"`

	Window    WindowConfig   `json:"window"`
	Terminal  TerminalConfig `json:"terminal"`
	Overrides StyleOverrides `json:"overrides"`
	Waitlist  WaitlistConfig `json:"waitlist"`
	Log       LogConfig      `json:"log"`
}

type WindowConfig struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Title     string `json:"title"`
	ShowStats bool   `json:"showStats"`
}

type TerminalConfig struct {
	CellWidth  int `json:"cellWidth"`  // logical pixels per column
	CellHeight int `json:"cellHeight"` // logical pixels per row
}

// StyleOverrides tweak the selected preset. Nil fields keep the preset value.
type StyleOverrides struct {
	Count     *int     `json:"count,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	LineAlpha *float64 `json:"lineAlpha,omitempty"`
	Learning  *bool    `json:"learning,omitempty"`
	Palette   []string `json:"palette,omitempty"`
}

type WaitlistConfig struct {
	// SQLite file path; empty leaves the waitlist unconfigured
	Database string `json:"database"`
}

type LogConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant:      render.PresetMesh,
		ResizePolicy: string(particle.ResizeReproject),
		FrameRate:    60,
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "meshfield",
			ShowStats: false,
		},
		Terminal: TerminalConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
		Log: LogConfig{Level: "info"},
	}
}

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	sch, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
})

// LoadConfig reads a JSON or YAML file, validates it against the embedded
// schema and layers it over DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if b, err = yamlToJSON(b); err != nil {
			return nil, err
		}
	}
	return Parse(b)
}

// Parse validates a JSON document and layers it over DefaultConfig.
func Parse(b []byte) (*Config, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func yamlToJSON(b []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config yaml: %w", err)
	}
	return out, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvReducedMotion); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReducedMotion, err)
		}
		c.ReducedMotion = on
	}
	if v, ok := lookup(EnvWaitlistDB); ok {
		c.Waitlist.Database = v
	}
	if v, ok := lookup(EnvVariant); ok && v != "" {
		c.Variant = v
	}
	return nil
}

// Validate checks the fields that flags and environment can set after the
// schema has run.
func (c *Config) Validate() error {
	if _, err := render.Preset(c.Variant); err != nil {
		return err
	}
	if _, err := particle.ParseResizePolicy(c.ResizePolicy); err != nil {
		return err
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frameRate must be positive, got %d", c.FrameRate)
	}
	if _, err := ParsePalette(c.Overrides.Palette); err != nil {
		return err
	}
	return nil
}

// ParsePalette converts "#rrggbb" strings into opaque colors.
func ParsePalette(hex []string) ([]color.NRGBA, error) {
	if len(hex) == 0 {
		return nil, nil
	}
	out := make([]color.NRGBA, 0, len(hex))
	for _, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", h, err)
		}
		r, g, b := c.RGB255()
		out = append(out, color.NRGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return out, nil
}

// Style resolves the selected preset with overrides applied.
func (c *Config) Style() (render.Style, error) {
	s, err := render.Preset(c.Variant)
	if err != nil {
		return render.Style{}, err
	}
	o := c.Overrides
	if o.Count != nil {
		s.Count = *o.Count
	}
	if o.Threshold != nil {
		s.Threshold = *o.Threshold
		if s.Clusters >= 2 {
			s.ClusterThreshold = *o.Threshold
		}
	}
	if o.LineAlpha != nil {
		s.LineAlpha = *o.LineAlpha
		if s.Clusters >= 2 {
			s.ClusterLineAlpha = *o.LineAlpha
		}
	}
	if o.Learning != nil {
		s.Learning = *o.Learning
	}
	palette, err := ParsePalette(o.Palette)
	if err != nil {
		return render.Style{}, err
	}
	if len(palette) > 0 {
		s.Spawn.Palette = palette
		// mesh paints every particle the same; a palette switches to per-particle colors
		s.ParticlePaint = nil
	}
	return s, nil
}

// Resize returns the parsed resize policy.
func (c *Config) Resize() particle.ResizePolicy {
	p, err := particle.ParseResizePolicy(c.ResizePolicy)
	if err != nil {
		return particle.ResizeReproject
	}
	return p
}
