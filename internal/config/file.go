package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// fileConfig is the on-disk shape of --config. Absent keys keep their
// defaults, so every scalar is a pointer and lists are applied only when
// non-empty.
type fileConfig struct {
	Size struct {
		Labels      []string `yaml:"labels" toml:"labels"`
		Thresholds  []int    `yaml:"thresholds" toml:"thresholds"`
		LabelPrefix *string  `yaml:"label_prefix" toml:"label_prefix"`
		Preset      string   `yaml:"preset" toml:"preset"`
	} `yaml:"size" toml:"size"`
	Ignore              []string            `yaml:"ignore" toml:"ignore"`
	IgnoreDeletions     *bool               `yaml:"ignore_deletions" toml:"ignore_deletions"`
	IgnoreDeletedFiles  *bool               `yaml:"ignore_deleted_files" toml:"ignore_deleted_files"`
	IncludeMergeCommits *bool               `yaml:"include_merge_commits" toml:"include_merge_commits"`
	MaxReleases         *int                `yaml:"max_releases" toml:"max_releases"`
	GraceWindow         string              `yaml:"grace_window" toml:"grace_window"`
	Window              string              `yaml:"window" toml:"window"`
	WindowDays          *int                `yaml:"window_days" toml:"window_days"`
	Bands               metrics.RatingBands `yaml:"bands" toml:"bands"`
}

// loadFile decodes path by extension and overlays it on m.
func loadFile(path string, m *metrics.Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	// Bands decode over the current values so a file may override a single
	// cut point.
	fc := fileConfig{Bands: m.Bands}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil {
			return InvalidValue("config", fmt.Errorf("decode YAML %q: %w", path, err))
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return InvalidValue("config", fmt.Errorf("decode TOML %q: %w", path, err))
		}
	default:
		return NewValidationError("config", fmt.Sprintf("unsupported config file extension %q", ext))
	}

	return fc.apply(m)
}

func (fc fileConfig) apply(m *metrics.Config) error {
	switch strings.ToLower(fc.Size.Preset) {
	case "":
	case "default":
		m.Size = metrics.DefaultSizeScale()
	case "legacy":
		m.Size = metrics.LegacySizeScale()
	default:
		return NewValidationError("size.preset", "must be default or legacy")
	}
	if len(fc.Size.Labels) > 0 {
		m.Size.Labels = fc.Size.Labels
	}
	if len(fc.Size.Thresholds) > 0 {
		m.Size.Thresholds = fc.Size.Thresholds
	}
	if fc.Size.LabelPrefix != nil {
		m.Size.LabelPrefix = *fc.Size.LabelPrefix
	}

	if len(fc.Ignore) > 0 {
		m.Filter.IgnorePatterns = fc.Ignore
	}
	if fc.IgnoreDeletions != nil {
		m.Filter.IgnoreDeletions = *fc.IgnoreDeletions
	}
	if fc.IgnoreDeletedFiles != nil {
		m.Filter.IgnoreRemovedFiles = *fc.IgnoreDeletedFiles
	}
	if fc.IncludeMergeCommits != nil {
		m.IncludeMergeCommits = *fc.IncludeMergeCommits
	}
	if fc.MaxReleases != nil {
		m.MaxReleases = *fc.MaxReleases
	}
	if fc.GraceWindow != "" {
		grace, err := time.ParseDuration(fc.GraceWindow)
		if err != nil {
			return InvalidValue("grace_window", err)
		}
		m.GraceWindow = grace
	}

	days := 0
	if fc.WindowDays != nil {
		days = *fc.WindowDays
	}
	if fc.Window != "" || days != 0 {
		window, err := resolveWindow(fc.Window, days, fc.Window != "", m.Window)
		if err != nil {
			return err
		}
		m.Window = window
	}

	m.Bands = fc.Bands
	return nil
}
