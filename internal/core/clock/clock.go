package clock

import "time"

// Config holds clock settings. A positive FixedStep makes every tick exactly
// that long and ignores the provider for deltas.
type Config struct {
	Provider  TimeProvider
	FixedStep time.Duration
	MaxDelta  time.Duration
	TimeScale float64
}

type Option func(*Config)

func WithProvider(p TimeProvider) Option {
	return func(c *Config) { c.Provider = p }
}

func WithFixedStep(d time.Duration) Option {
	return func(c *Config) { c.FixedStep = d }
}

// WithMaxDelta clamps variable deltas, so a stall does not turn into one huge step.
func WithMaxDelta(d time.Duration) Option {
	return func(c *Config) { c.MaxDelta = d }
}

func WithTimeScale(f float64) Option {
	return func(c *Config) { c.TimeScale = f }
}

// Clock is the global time of a world. Only the tick loop advances it.
type Clock struct {
	cfg Config

	started bool
	last    time.Time
	paused  bool

	delta   time.Duration
	elapsed time.Duration
	frame   uint64

	fpsStart  time.Time
	fpsFrames int
	fps       float64
}

func New(opts ...Option) *Clock {
	cfg := Config{
		Provider:  MonotonicProvider{},
		MaxDelta:  250 * time.Millisecond,
		TimeScale: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Provider == nil {
		cfg.Provider = MonotonicProvider{}
	}
	if cfg.TimeScale < 0 {
		cfg.TimeScale = 0
	}
	return &Clock{cfg: cfg}
}

// Advance performs one tick and returns its delta. The first variable-step
// tick has a zero delta since there is nothing to measure against.
func (c *Clock) Advance() time.Duration {
	now := c.cfg.Provider.Now()

	var d time.Duration
	switch {
	case c.cfg.FixedStep > 0:
		d = c.cfg.FixedStep
	case c.started:
		d = now.Sub(c.last)
		if d < 0 {
			d = 0
		}
		if c.cfg.MaxDelta > 0 && d > c.cfg.MaxDelta {
			d = c.cfg.MaxDelta
		}
	}
	if !c.started {
		c.fpsStart = now
	}
	c.started = true
	c.last = now

	if c.cfg.TimeScale != 1 {
		d = time.Duration(float64(d) * c.cfg.TimeScale)
	}
	if c.paused {
		d = 0
	}

	c.delta = d
	c.elapsed += d
	c.frame++
	c.sampleFPS(now)
	return d
}

func (c *Clock) sampleFPS(now time.Time) {
	c.fpsFrames++
	window := now.Sub(c.fpsStart)
	if window >= time.Second {
		c.fps = float64(c.fpsFrames) / window.Seconds()
		c.fpsFrames = 0
		c.fpsStart = now
	}
}

func (c *Clock) Delta() time.Duration { return c.delta }

func (c *Clock) DeltaSeconds() float64 { return c.delta.Seconds() }

// Elapsed is the sum of all deltas, i.e. simulated time.
func (c *Clock) Elapsed() time.Duration { return c.elapsed }

func (c *Clock) Frame() uint64 { return c.frame }

// Now reads the provider without advancing.
func (c *Clock) Now() time.Time { return c.cfg.Provider.Now() }

// Pause freezes simulated time. Ticks still count frames.
func (c *Clock) Pause() { c.paused = true }

func (c *Clock) Resume() { c.paused = false }

func (c *Clock) IsPaused() bool { return c.paused }

// FPS is the tick rate measured over the last full second of provider time.
func (c *Clock) FPS() float64 { return c.fps }

func (c *Clock) SetTimeScale(f float64) {
	if f < 0 {
		f = 0
	}
	c.cfg.TimeScale = f
}
