package config

import (
	"github.com/johnqtcg/shipmetrics/internal/collect"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
	"github.com/johnqtcg/shipmetrics/internal/report"
)

// Config represents normalized runtime configuration for the CLI.
type Config struct {
	OutputPath string
	Format     report.Format
	Stdout     bool
	Force      bool
	InputFile  string
	ConfigFile string
	Positional []string
	Token      string `masq:"secret"`

	Families       []collect.Family
	Comment        bool
	Label          bool
	TeamMaturity   bool
	IncludeSamples bool
	Concurrency    int

	Metrics metrics.Config
	Logger  Logger
}

// CollectOptions maps the run flags onto collector options.
func (c Config) CollectOptions() collect.Options {
	return collect.Options{
		Families:     c.Families,
		Comment:      c.Comment,
		Label:        c.Label,
		TeamMaturity: c.TeamMaturity,
	}
}

// RenderOptions maps the output flags onto renderer options.
func (c Config) RenderOptions() report.RenderOptions {
	return report.RenderOptions{
		Format:         c.Format,
		IncludeSamples: c.IncludeSamples,
	}
}
