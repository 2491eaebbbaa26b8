package metrics

import (
	"time"

	"github.com/johnqtcg/shipmetrics/internal/github"
)

// Report gathers the family results computed for one target. A nil family
// was not requested or does not apply to the target type.
type Report struct {
	Target      github.ResourceRef `json:"target" yaml:"target"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Release     *ReleaseResult     `json:"release,omitempty" yaml:"release,omitempty"`
	Size        *SizeResult        `json:"pr_size,omitempty" yaml:"pr_size,omitempty"`
	Maturity    *MaturityResult    `json:"pr_maturity,omitempty" yaml:"pr_maturity,omitempty"`
	Team        *TeamResult        `json:"team,omitempty" yaml:"team,omitempty"`
	Actions     []ActionResult     `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// ActionResult records a side effect performed on the target.
type ActionResult struct {
	Name  string `json:"name" yaml:"name"`
	Done  bool   `json:"done" yaml:"done"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Unavailable lists the families that degraded for lack of upstream data.
func (r Report) Unavailable() []string {
	var out []string
	if r.Release != nil && r.Release.Status == StatusUnavailable {
		out = append(out, "release")
	}
	if r.Size != nil && r.Size.Status == StatusUnavailable {
		out = append(out, "pr-size")
	}
	if r.Maturity != nil && r.Maturity.Status == StatusUnavailable {
		out = append(out, "pr-maturity")
	}
	if r.Team != nil && r.Team.Status == StatusUnavailable {
		out = append(out, "team")
	}
	return out
}
