package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// DefaultSizeLabelPrefix prefixes size categories when used as PR labels.
const DefaultSizeLabelPrefix = "size/"

// SizeScale maps change counts to ordered tiers. A count below Thresholds[i]
// falls into Labels[i]; a count equal to the last threshold still belongs to
// the second-to-last tier, anything larger to the last one.
type SizeScale struct {
	Labels      []string `json:"labels" yaml:"labels" toml:"labels"`
	Thresholds  []int    `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
	LabelPrefix string   `json:"label_prefix" yaml:"label_prefix" toml:"label_prefix"`
}

// DefaultSizeScale is the four-tier s/m/l/xl scale.
func DefaultSizeScale() SizeScale {
	return SizeScale{
		Labels:      []string{"s", "m", "l", "xl"},
		Thresholds:  []int{105, 160, 240},
		LabelPrefix: DefaultSizeLabelPrefix,
	}
}

// LegacySizeScale is the earlier five-tier xs..xl scale.
func LegacySizeScale() SizeScale {
	return SizeScale{
		Labels:      []string{"xs", "s", "m", "l", "xl"},
		Thresholds:  []int{10, 50, 200, 500},
		LabelPrefix: DefaultSizeLabelPrefix,
	}
}

// Validate checks the scale shape.
func (s SizeScale) Validate() error {
	if len(s.Thresholds) == 0 {
		return errors.New("size scale needs at least one threshold")
	}
	if len(s.Labels) != len(s.Thresholds)+1 {
		return fmt.Errorf("size scale has %d labels for %d thresholds, want %d", len(s.Labels), len(s.Thresholds), len(s.Thresholds)+1)
	}
	for i := 1; i < len(s.Thresholds); i++ {
		if s.Thresholds[i] <= s.Thresholds[i-1] {
			return fmt.Errorf("size thresholds must be strictly ascending, got %v", s.Thresholds)
		}
	}
	seen := make(map[string]bool, len(s.Labels))
	for _, label := range s.Labels {
		key := strings.ToLower(label)
		if key == "" || seen[key] {
			return fmt.Errorf("size labels must be unique and non-empty, got %v", s.Labels)
		}
		seen[key] = true
	}
	return nil
}

// Classify returns the tier label for a change count.
func (s SizeScale) Classify(changes int) string {
	return s.Labels[s.tier(max(changes, 0))]
}

func (s SizeScale) tier(changes int) int {
	last := len(s.Thresholds) - 1
	for i, threshold := range s.Thresholds {
		if changes < threshold || (i == last && changes == threshold) {
			return i
		}
	}
	return len(s.Labels) - 1
}

// Index returns the position of label in the scale, or -1.
func (s SizeScale) Index(label string) int {
	for i, l := range s.Labels {
		if strings.EqualFold(l, label) {
			return i
		}
	}
	return -1
}

// SizeLabel renders a category as a PR label.
func (s SizeScale) SizeLabel(category string) string {
	return s.LabelPrefix + category
}

// ParseSizeLabel maps a PR label back to its category.
func (s SizeScale) ParseSizeLabel(label string) (string, bool) {
	if s.LabelPrefix != "" {
		if len(label) < len(s.LabelPrefix) || !strings.EqualFold(label[:len(s.LabelPrefix)], s.LabelPrefix) {
			return "", false
		}
		label = label[len(s.LabelPrefix):]
	}
	idx := s.Index(label)
	if idx < 0 {
		return "", false
	}
	return s.Labels[idx], true
}

// SizeResult is the record of the PR size family.
type SizeResult struct {
	Status            Status          `json:"status" yaml:"status"`
	Category          string          `json:"category,omitempty" yaml:"category,omitempty"`
	Label             string          `json:"label,omitempty" yaml:"label,omitempty"`
	Aggregate         ChangeAggregate `json:"aggregate" yaml:"aggregate"`
	FilesBeforeFilter int             `json:"files_before_filter" yaml:"files_before_filter"`
	Details           Details         `json:"details" yaml:"details"`
}

// ClassifyPullRequest sizes a PR from its changed files.
func ClassifyPullRequest(files []github.FileChange, cfg Config) SizeResult {
	agg := NewFileFilter(cfg.Filter).Summarize(files)
	category := cfg.Size.Classify(agg.Changes)
	return SizeResult{
		Status:            StatusOK,
		Category:          category,
		Label:             cfg.Size.SizeLabel(category),
		Aggregate:         agg,
		FilesBeforeFilter: len(files),
	}
}

// SizeUnavailable is the PR size record for a failed lookup.
func SizeUnavailable(reason string, err error) SizeResult {
	return SizeResult{
		Status:  StatusUnavailable,
		Details: errorDetails(reason, err),
	}
}
