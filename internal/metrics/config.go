package metrics

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultMaxReleases caps how many releases or tags are considered.
	DefaultMaxReleases = 10
	// DefaultGraceWindow is how long after PR creation commits still count
	// as part of the initial publication.
	DefaultGraceWindow = 5 * time.Minute
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = goerr.New("invalid metrics configuration")

// Config is the immutable input shared by every engine entry point.
type Config struct {
	Filter              FilterConfig
	Size                SizeScale
	IncludeMergeCommits bool
	MaxReleases         int
	GraceWindow         time.Duration
	Window              Window
	Bands               RatingBands
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Size:        DefaultSizeScale(),
		MaxReleases: DefaultMaxReleases,
		GraceWindow: DefaultGraceWindow,
		Window:      WindowWeekly,
		Bands:       DefaultRatingBands(),
	}
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	if err := c.Size.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.MaxReleases < 2 {
		return goerr.Wrap(ErrInvalidConfig, "max releases must be at least 2", goerr.V("max_releases", c.MaxReleases))
	}
	if c.GraceWindow < 0 {
		return goerr.Wrap(ErrInvalidConfig, "grace window must not be negative", goerr.V("grace_window", c.GraceWindow))
	}
	if c.Window.Days <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "window days must be positive", goerr.V("window", c.Window.Name), goerr.V("days", c.Window.Days))
	}
	for _, nb := range c.Bands.each() {
		if !nb.band.ordered() {
			return goerr.Wrap(ErrInvalidConfig, "rating band cut points are out of order", goerr.V("band", nb.name))
		}
	}
	return nil
}
