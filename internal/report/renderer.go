package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// Format selects the output encoding of a report.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatMarkdown, FormatJSON, FormatCSV:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format %q", name)
}

// Extension is the file extension used for the format.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// RenderOptions controls report rendering behavior.
type RenderOptions struct {
	Format Format
	// IncludeSamples adds the per pull request table to the team section.
	IncludeSamples bool
}

// Renderer converts a metrics report into its output encoding.
type Renderer interface {
	Render(ctx context.Context, rep metrics.Report, opts RenderOptions) ([]byte, error)
}

type renderer struct{}

// NewRenderer creates a report renderer instance.
func NewRenderer() Renderer {
	return &renderer{}
}

func (r *renderer) Render(ctx context.Context, rep metrics.Report, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	if rep.Target.Owner == "" || rep.Target.Repo == "" {
		return nil, fmt.Errorf("render report: missing target repository")
	}

	switch opts.Format {
	case FormatMarkdown, "":
		return renderMarkdown(rep, opts)
	case FormatJSON:
		if !opts.IncludeSamples {
			rep = withoutSamples(rep)
		}
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatCSV:
		return encodeCSV(Record(rep))
	default:
		return nil, fmt.Errorf("render report: unsupported format %q", opts.Format)
	}
}

// withoutSamples drops the per pull request timings from a copy of rep.
func withoutSamples(rep metrics.Report) metrics.Report {
	if rep.Team == nil || rep.Team.Metrics == nil {
		return rep
	}
	team := *rep.Team
	m := *team.Metrics
	m.Samples = nil
	team.Metrics = &m
	rep.Team = &team
	return rep
}

func renderMarkdown(rep metrics.Report, opts RenderOptions) ([]byte, error) {
	front, err := renderFrontMatter(rep)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(front)
	fmt.Fprintf(&b, "# Delivery metrics: %s\n\n", targetName(rep.Target))
	b.WriteString(renderOverviewSection(rep))

	if rep.Release != nil {
		b.WriteString("\n")
		b.WriteString(renderReleaseSection(*rep.Release))
	}
	if rep.Size != nil {
		b.WriteString("\n")
		b.WriteString(renderSizeSection(*rep.Size))
	}
	if rep.Maturity != nil {
		b.WriteString("\n")
		b.WriteString(renderMaturitySection(*rep.Maturity))
	}
	if rep.Team != nil {
		b.WriteString("\n")
		b.WriteString(renderTeamSection(*rep.Team, opts.IncludeSamples))
	}
	if len(rep.Actions) > 0 {
		b.WriteString("\n")
		b.WriteString(renderActionsSection(rep.Actions))
	}

	b.WriteString("\n## References\n")
	fmt.Fprintf(&b, "- Target URL: %s\n", rep.Target.URL)

	return []byte(b.String()), nil
}

func renderOverviewSection(rep metrics.Report) string {
	var b strings.Builder

	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "- target: %s\n", targetName(rep.Target))
	fmt.Fprintf(&b, "- type: %s\n", rep.Target.Type)
	fmt.Fprintf(&b, "- generated_at: %s\n", formatTime(rep.GeneratedAt))
	unavailable := rep.Unavailable()
	if len(unavailable) == 0 {
		b.WriteString("- unavailable: none\n")
	} else {
		fmt.Fprintf(&b, "- unavailable: %s\n", strings.Join(unavailable, ", "))
	}

	return b.String()
}

func renderActionsSection(actions []metrics.ActionResult) string {
	var b strings.Builder

	b.WriteString("## Actions\n")
	for _, action := range actions {
		if action.Done {
			fmt.Fprintf(&b, "- %s: done\n", action.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: failed (%s)\n", action.Name, action.Error)
	}

	return b.String()
}

func targetName(ref github.ResourceRef) string {
	name := ref.Owner + "/" + ref.Repo
	if ref.Type == github.ResourcePullRequest {
		name = fmt.Sprintf("%s#%d", name, ref.Number)
	}
	return name
}
