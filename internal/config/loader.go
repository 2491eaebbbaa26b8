package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/johnqtcg/shipmetrics/internal/collect"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
	"github.com/johnqtcg/shipmetrics/internal/report"
)

const appName = "shipmetrics"

// Loader loads configuration from CLI args and environment variables.
type Loader interface {
	Load(args []string) (Config, error)
}

// NewLoader constructs the default configuration loader.
func NewLoader() Loader {
	return &flagLoader{}
}

type flagLoader struct{}

// rawFlags holds flag values before they are normalized into Config.
type rawFlags struct {
	format          string
	families        string
	sizeLabels      string
	sizeThresholds  string
	sizeLabelPrefix string
	ignore          string
	ignoreDeletions bool
	ignoreRemoved   bool
	includeMerges   bool
	maxReleases     int
	graceWindow     time.Duration
	window          string
	windowDays      int
}

func envVars(name string) cli.ValueSourceChain {
	return cli.EnvVars("SHIPMETRICS_" + name)
}

func (l *flagLoader) Load(args []string) (Config, error) {
	_ = l

	var (
		cfg Config
		raw rawFlags
		set = make(map[string]bool)
	)

	flags := []cli.Flag{
		&cli.StringFlag{Name: "token", Usage: "GitHub token", Destination: &cfg.Token, Sources: cli.EnvVars("SHIPMETRICS_TOKEN", "GITHUB_TOKEN")},
		&cli.StringFlag{Name: "metrics", Usage: "metric families (release,pr-size,pr-maturity,team)", Destination: &raw.families, Sources: envVars("METRICS")},
		&cli.StringFlag{Name: "format", Usage: "output format (markdown, json, csv)", Value: string(report.FormatMarkdown), Destination: &raw.format, Sources: envVars("FORMAT")},
		&cli.StringFlag{Name: "output", Usage: "output file or directory", Destination: &cfg.OutputPath, Sources: envVars("OUTPUT")},
		&cli.BoolFlag{Name: "stdout", Usage: "write the report to stdout", Destination: &cfg.Stdout},
		&cli.BoolFlag{Name: "force", Usage: "overwrite existing files", Destination: &cfg.Force},
		&cli.StringFlag{Name: "input-file", Usage: "batch input file", Destination: &cfg.InputFile},
		&cli.StringFlag{Name: "config", Usage: "YAML or TOML file with thresholds and rating bands", Destination: &cfg.ConfigFile, Sources: envVars("CONFIG")},
		&cli.StringFlag{Name: "size-labels", Usage: "comma separated size labels", Destination: &raw.sizeLabels, Sources: envVars("SIZE_LABELS")},
		&cli.StringFlag{Name: "size-thresholds", Usage: "comma separated ascending size thresholds", Destination: &raw.sizeThresholds, Sources: envVars("SIZE_THRESHOLDS")},
		&cli.StringFlag{Name: "size-label-prefix", Usage: "prefix of the size label", Destination: &raw.sizeLabelPrefix, Sources: envVars("SIZE_LABEL_PREFIX")},
		&cli.StringFlag{Name: "ignore", Usage: "comma separated file globs excluded from size", Destination: &raw.ignore, Sources: envVars("IGNORE")},
		&cli.BoolFlag{Name: "ignore-deletions", Usage: "count additions only", Destination: &raw.ignoreDeletions, Sources: envVars("IGNORE_DELETIONS")},
		&cli.BoolFlag{Name: "ignore-deleted-files", Usage: "skip removed files", Destination: &raw.ignoreRemoved, Sources: envVars("IGNORE_DELETED_FILES")},
		&cli.BoolFlag{Name: "include-merge-commits", Usage: "let merge commits be the newest lead time sample", Destination: &raw.includeMerges, Sources: envVars("INCLUDE_MERGE_COMMITS")},
		&cli.IntFlag{Name: "max-releases", Usage: "releases or tags considered", Value: metrics.DefaultMaxReleases, Destination: &raw.maxReleases, Sources: envVars("MAX_RELEASES")},
		&cli.DurationFlag{Name: "grace-window", Usage: "time after PR creation that still counts as publication", Value: metrics.DefaultGraceWindow, Destination: &raw.graceWindow, Sources: envVars("GRACE_WINDOW")},
		&cli.StringFlag{Name: "window", Usage: "team window (weekly, fortnightly, monthly)", Value: metrics.WindowWeekly.Name, Destination: &raw.window, Sources: envVars("WINDOW")},
		&cli.IntFlag{Name: "window-days", Usage: "team window length in days", Destination: &raw.windowDays, Sources: envVars("WINDOW_DAYS")},
		&cli.BoolFlag{Name: "comment", Usage: "post the summary as a pull request comment", Destination: &cfg.Comment},
		&cli.BoolFlag{Name: "label", Usage: "attach the size label to the pull request", Destination: &cfg.Label},
		&cli.BoolFlag{Name: "team-maturity", Usage: "sample PR maturity across the team window", Destination: &cfg.TeamMaturity, Sources: envVars("TEAM_MATURITY")},
		&cli.BoolFlag{Name: "samples", Usage: "include per pull request timings in the report", Destination: &cfg.IncludeSamples},
		&cli.IntFlag{Name: "concurrency", Usage: "concurrent pull request fetches", Value: collect.DefaultConcurrency, Destination: &cfg.Concurrency, Sources: envVars("CONCURRENCY")},
	}
	flags = append(flags, cfg.Logger.Flags()...)

	cmd := &cli.Command{
		Name:      appName,
		Usage:     "compute delivery metrics for GitHub repositories and pull requests",
		Flags:     flags,
		HideHelp:  true,
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return err
		},
		Action: func(_ context.Context, c *cli.Command) error {
			for _, name := range c.FlagNames() {
				set[name] = c.IsSet(name)
			}
			cfg.Positional = c.Args().Slice()
			return nil
		},
	}

	if err := cmd.Run(context.Background(), append([]string{appName}, args...)); err != nil {
		return Config{}, WrapError("parse flags", err)
	}

	format, err := report.ParseFormat(raw.format)
	if err != nil {
		return Config{}, WrapError("validate flags", NewValidationError("format", "must be markdown, json or csv"))
	}
	cfg.Format = format

	if cfg.Stdout && cfg.InputFile != "" {
		return Config{}, WrapError("validate flags", NewConflictError("--stdout", "--input-file"))
	}
	if cfg.Concurrency <= 0 {
		return Config{}, WrapError("validate flags", NewValidationError("concurrency", "must be positive"))
	}

	cfg.Families, err = collect.ParseFamilies(raw.families)
	if err != nil {
		return Config{}, WrapError("validate flags", InvalidValue("metrics", err))
	}

	cfg.Metrics = metrics.DefaultConfig()
	if cfg.ConfigFile != "" {
		if err := loadFile(cfg.ConfigFile, &cfg.Metrics); err != nil {
			return Config{}, WrapError("load config file", err)
		}
	}
	if err := raw.apply(set, &cfg.Metrics); err != nil {
		return Config{}, WrapError("validate flags", err)
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return Config{}, WrapError("validate metrics", InvalidValue("metrics", err))
	}

	return cfg, nil
}

// apply overlays explicitly set flags on m. Unset flags leave the defaults
// or the config file values in place.
func (r rawFlags) apply(set map[string]bool, m *metrics.Config) error {
	if set["size-labels"] {
		m.Size.Labels = splitList(r.sizeLabels)
	}
	if set["size-thresholds"] {
		thresholds, err := parseThresholds(r.sizeThresholds)
		if err != nil {
			return InvalidValue("size-thresholds", err)
		}
		m.Size.Thresholds = thresholds
	}
	if set["size-label-prefix"] {
		m.Size.LabelPrefix = r.sizeLabelPrefix
	}
	if set["ignore"] {
		m.Filter.IgnorePatterns = splitList(r.ignore)
	}
	if set["ignore-deletions"] {
		m.Filter.IgnoreDeletions = r.ignoreDeletions
	}
	if set["ignore-deleted-files"] {
		m.Filter.IgnoreRemovedFiles = r.ignoreRemoved
	}
	if set["include-merge-commits"] {
		m.IncludeMergeCommits = r.includeMerges
	}
	if set["max-releases"] {
		m.MaxReleases = r.maxReleases
	}
	if set["grace-window"] {
		m.GraceWindow = r.graceWindow
	}
	if set["window"] || set["window-days"] {
		window, err := resolveWindow(r.window, r.windowDays, set["window"], m.Window)
		if err != nil {
			return err
		}
		m.Window = window
	}
	return nil
}

// resolveWindow picks a named window and optionally overrides its length.
// A custom length without a name yields a window called "custom".
func resolveWindow(name string, days int, named bool, current metrics.Window) (metrics.Window, error) {
	window := current
	if named {
		w, ok := metrics.WindowByName(name)
		if !ok {
			return metrics.Window{}, NewValidationError("window", "must be weekly, fortnightly or monthly")
		}
		window = w
	}
	if days != 0 {
		if days < 0 {
			return metrics.Window{}, NewValidationError("window-days", "must be positive")
		}
		if !named {
			window.Name = "custom"
		}
		window.Days = days
	}
	return window, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseThresholds(raw string) ([]int, error) {
	parts := splitList(raw)
	if len(parts) == 0 {
		return nil, errors.New("at least one threshold is required")
	}
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("threshold %q is not an integer", part)
		}
		out = append(out, n)
	}
	return out, nil
}
