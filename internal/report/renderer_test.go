package report

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

func TestRendererSectionOrder(t *testing.T) {
	t.Parallel()

	out, err := NewRenderer().Render(context.Background(), samplePRReport(), RenderOptions{Format: FormatMarkdown})
	if err != nil {
		t.Fatalf("Render error = %v, want nil", err)
	}
	content := string(out)

	ordered := []string{
		"---\n",
		"# Delivery metrics: octo/repo#42",
		"## Overview",
		"## Releases",
		"## Pull Request Size",
		"## Pull Request Maturity",
		"## References",
	}

	last := -1
	for _, piece := range ordered {
		idx := strings.Index(content, piece)
		if idx < 0 {
			t.Fatalf("missing section %q\n%s", piece, content)
		}
		if idx <= last {
			t.Fatalf("section order incorrect around %q\n%s", piece, content)
		}
		last = idx
	}
}

func TestRendererMarksUnavailableMetrics(t *testing.T) {
	t.Parallel()

	out, err := NewRenderer().Render(context.Background(), samplePRReport(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render error = %v, want nil", err)
	}
	content := string(out)

	required := []string{
		"- unavailable: pr-maturity",
		"- maturity: unavailable (post_publication_changes: compare aaaaaaa...ccccccc: not found)",
		"- baseline: aaaaaaa",
		"- lead_time_average: 1,234.5h",
		"- lead_time_oldest: 2,000h (0123456)",
		"- changes: 120 (+100 / -20)",
		"- files: 4 counted of 6 changed",
	}
	for _, piece := range required {
		if !strings.Contains(content, piece) {
			t.Fatalf("report missing %q\n%s", piece, content)
		}
	}
}

func TestRendererTeamSection(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name        string
		samples     bool
		wantTable   bool
		wantContain []string
	}{
		{
			name: "summary only",
			wantContain: []string{
				"## Team (weekly, 7 days)",
				"- pickup_time: 2.5h (Good)",
				"- approve_time: unavailable",
				"- size_distribution: s 66.67%, m 33.33%",
				"- predominant_size: s (Elite)",
				"- maturity: 92% (Elite)",
				"- releases: no data (no releases in window)",
			},
		},
		{name: "with samples", samples: true, wantTable: true},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := NewRenderer().Render(context.Background(), sampleRepoReport(), RenderOptions{IncludeSamples: tc.samples})
			if err != nil {
				t.Fatalf("Render error = %v, want nil", err)
			}
			content := string(out)
			for _, piece := range tc.wantContain {
				if !strings.Contains(content, piece) {
					t.Fatalf("report missing %q\n%s", piece, content)
				}
			}
			hasTable := strings.Contains(content, "| #5 | alice | 2h | unavailable | unavailable | s |")
			if hasTable != tc.wantTable {
				t.Fatalf("sample table present = %v, want %v\n%s", hasTable, tc.wantTable, content)
			}
		})
	}
}

func TestRendererTeamNoData(t *testing.T) {
	t.Parallel()

	rep := sampleRepoReport()
	rep.Team.Status = metrics.StatusNoData
	rep.Team.Metrics = nil
	rep.Team.Details = metrics.Details{Reason: metrics.ReasonNoPullRequests}

	out, err := NewRenderer().Render(context.Background(), rep, RenderOptions{})
	if err != nil {
		t.Fatalf("Render error = %v, want nil", err)
	}
	if !strings.Contains(string(out), "- pull_requests: no data (no pull requests in window)") {
		t.Fatalf("no-data marker missing\n%s", out)
	}
}

func TestRendererJSON(t *testing.T) {
	t.Parallel()

	out, err := NewRenderer().Render(context.Background(), samplePRReport(), RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render error = %v, want nil", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v, want nil", err)
	}
	maturity, ok := decoded["pr_maturity"].(map[string]any)
	if !ok {
		t.Fatalf("pr_maturity missing in %s", out)
	}
	if maturity["percentage"] != nil {
		t.Fatalf("percentage = %v, want null", maturity["percentage"])
	}
	if _, ok := decoded["team"]; ok {
		t.Fatalf("team should be omitted when not requested: %s", out)
	}
}

func TestRendererJSONSamples(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		samples bool
	}{
		{name: "without samples", samples: false},
		{name: "with samples", samples: true},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rep := sampleRepoReport()
			out, err := NewRenderer().Render(context.Background(), rep, RenderOptions{Format: FormatJSON, IncludeSamples: tc.samples})
			if err != nil {
				t.Fatalf("Render error = %v, want nil", err)
			}

			var decoded struct {
				Team struct {
					Metrics map[string]any `json:"metrics"`
				} `json:"team"`
			}
			if err := json.Unmarshal(out, &decoded); err != nil {
				t.Fatalf("Unmarshal error = %v, want nil", err)
			}
			_, has := decoded.Team.Metrics["samples"]
			if has != tc.samples {
				t.Fatalf("samples present = %v, want %v\n%s", has, tc.samples, out)
			}
			if len(rep.Team.Metrics.Samples) == 0 {
				t.Fatal("Render dropped samples from the caller's report")
			}
		})
	}
}

func TestRendererRejectsMissingTarget(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer().Render(context.Background(), metrics.Report{}, RenderOptions{})
	if err == nil {
		t.Fatal("Render error = nil, want error")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		input   string
		want    Format
		wantExt string
		wantErr bool
	}{
		{input: "markdown", want: FormatMarkdown, wantExt: "md"},
		{input: "MD", want: FormatMarkdown, wantExt: "md"},
		{input: "json", want: FormatJSON, wantExt: "json"},
		{input: " csv ", want: FormatCSV, wantExt: "csv"},
		{input: "xml", wantErr: true},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) error = nil, want error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v, want nil", tc.input, err)
			}
			if got != tc.want || got.Extension() != tc.wantExt {
				t.Fatalf("ParseFormat(%q) = %q/%q, want %q/%q", tc.input, got, got.Extension(), tc.want, tc.wantExt)
			}
		})
	}
}
