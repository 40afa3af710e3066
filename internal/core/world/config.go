package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("16ms", "1s")
// in config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type InspectorConfig struct {
	// Addr enables the websocket inspector when non-empty, e.g. ":8089".
	Addr string `yaml:"addr" json:"addr"`
}

// Config describes one world.
type Config struct {
	// TickRate is the number of ticks per second Run aims for.
	TickRate float64 `yaml:"tick_rate" json:"tick_rate"`
	// FixedStep, when set, makes every tick advance the clock by exactly this much.
	FixedStep Duration `yaml:"fixed_step" json:"fixed_step"`
	MaxDelta  Duration `yaml:"max_delta" json:"max_delta"`
	TimeScale float64  `yaml:"time_scale" json:"time_scale"`
	LogLevel  string   `yaml:"log_level" json:"log_level"`
	// VerifyOutput checks that output passes leave the property store untouched.
	VerifyOutput  bool            `yaml:"verify_output" json:"verify_output"`
	CommandBuffer int             `yaml:"command_buffer" json:"command_buffer"`
	Inspector     InspectorConfig `yaml:"inspector" json:"inspector"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:      60,
		MaxDelta:      Duration(250 * time.Millisecond),
		TimeScale:     1,
		LogLevel:      "info",
		CommandBuffer: 256,
	}
}

// LoadConfigYAML reads a config on top of DefaultConfig. An empty document
// yields the defaults.
func LoadConfigYAML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick_rate must be positive, got %v", ErrInvalidConfig, c.TickRate))
	}
	if c.FixedStep < 0 {
		errs = append(errs, fmt.Errorf("%w: fixed_step is negative", ErrInvalidConfig))
	}
	if c.MaxDelta < 0 {
		errs = append(errs, fmt.Errorf("%w: max_delta is negative", ErrInvalidConfig))
	}
	if c.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("%w: time_scale is negative", ErrInvalidConfig))
	}
	if c.CommandBuffer <= 0 {
		errs = append(errs, fmt.Errorf("%w: command_buffer must be positive, got %d", ErrInvalidConfig, c.CommandBuffer))
	}
	return errors.Join(errs...)
}

// TickInterval is the wall time between ticks in Run.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / c.TickRate)
}

// normalized fills zero values with defaults so a zero Config is usable.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.MaxDelta == 0 {
		c.MaxDelta = def.MaxDelta
	}
	if c.TimeScale == 0 {
		c.TimeScale = def.TimeScale
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.CommandBuffer <= 0 {
		c.CommandBuffer = def.CommandBuffer
	}
	return c
}
