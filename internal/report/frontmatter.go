package report

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

type frontMatter struct {
	Type        string            `yaml:"type"`
	Owner       string            `yaml:"owner"`
	Repo        string            `yaml:"repo"`
	Number      int               `yaml:"number,omitempty"`
	URL         string            `yaml:"url"`
	GeneratedAt string            `yaml:"generated_at"`
	Status      map[string]string `yaml:"status"`
}

func renderFrontMatter(rep metrics.Report) (string, error) {
	fm := frontMatter{
		Type:        string(rep.Target.Type),
		Owner:       rep.Target.Owner,
		Repo:        rep.Target.Repo,
		Number:      rep.Target.Number,
		URL:         rep.Target.URL,
		GeneratedAt: formatTime(rep.GeneratedAt),
		Status:      familyStatus(rep),
	}

	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
	return b.String(), nil
}

func familyStatus(rep metrics.Report) map[string]string {
	status := make(map[string]string)
	if rep.Release != nil {
		status["release"] = string(rep.Release.Status)
	}
	if rep.Size != nil {
		status["pr_size"] = string(rep.Size.Status)
	}
	if rep.Maturity != nil {
		status["pr_maturity"] = string(rep.Maturity.Status)
	}
	if rep.Team != nil {
		status["team"] = string(rep.Team.Status)
	}
	return status
}
