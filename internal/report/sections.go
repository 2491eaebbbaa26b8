package report

import (
	"fmt"
	"strings"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

func renderReleaseSection(res metrics.ReleaseResult) string {
	var b strings.Builder

	b.WriteString("## Releases\n")
	switch res.Status {
	case metrics.StatusNoData:
		fmt.Fprintf(&b, "- status: no data (%s)\n", res.Details.Reason)
		return b.String()
	case metrics.StatusUnavailable:
		fmt.Fprintf(&b, "- status: %s\n", withReason(res.Details))
		return b.String()
	}

	fmt.Fprintf(&b, "- source: %s\n", res.Source)
	fmt.Fprintf(&b, "- candidates: %s\n", formatCount(res.Candidates))
	if res.Latest != nil {
		fmt.Fprintf(&b, "- latest: %s (%s)\n", res.Latest.Name, formatTime(res.Latest.CreatedAt))
	}
	if res.Previous != nil {
		fmt.Fprintf(&b, "- previous: %s (%s)\n", res.Previous.Name, formatTime(res.Previous.CreatedAt))
	}
	fmt.Fprintf(&b, "- deployment_frequency: %s\n", formatDays(res.DeploymentFrequencyDays))

	if res.LeadTime == nil {
		fmt.Fprintf(&b, "- lead_time: %s\n", withReason(res.Details))
		return b.String()
	}
	lt := res.LeadTime
	fmt.Fprintf(&b, "- lead_time_average: %s\n", formatHours(&lt.AverageHours))
	fmt.Fprintf(&b, "- lead_time_oldest: %s (%s)\n", formatHours(&lt.OldestHours), shortSHA(lt.OldestSHA))
	fmt.Fprintf(&b, "- lead_time_newest: %s (%s)\n", formatHours(&lt.NewestHours), shortSHA(lt.NewestSHA))
	fmt.Fprintf(&b, "- commits: %s (samples %s, discarded %s, merges %s)\n",
		formatCount(lt.Commits), formatCount(lt.Samples), formatCount(lt.Discarded), formatCount(lt.MergeCommits))

	return b.String()
}

func renderSizeSection(res metrics.SizeResult) string {
	var b strings.Builder

	b.WriteString("## Pull Request Size\n")
	if res.Status != metrics.StatusOK {
		fmt.Fprintf(&b, "- size: %s\n", withReason(res.Details))
		return b.String()
	}

	fmt.Fprintf(&b, "- category: %s\n", res.Category)
	fmt.Fprintf(&b, "- label: %s\n", res.Label)
	fmt.Fprintf(&b, "- changes: %s (+%s / -%s)\n",
		formatCount(res.Aggregate.Changes), formatCount(res.Aggregate.Additions), formatCount(res.Aggregate.Deletions))
	fmt.Fprintf(&b, "- files: %s counted of %s changed\n", formatCount(res.Aggregate.Files), formatCount(res.FilesBeforeFilter))

	return b.String()
}

func renderMaturitySection(res metrics.MaturityResult) string {
	var b strings.Builder

	b.WriteString("## Pull Request Maturity\n")
	fmt.Fprintf(&b, "- reason: %s\n", res.Reason)
	if res.Percentage == nil {
		fmt.Fprintf(&b, "- maturity: %s\n", withReason(res.Details))
	} else {
		fmt.Fprintf(&b, "- maturity: %d%%\n", *res.Percentage)
		fmt.Fprintf(&b, "- stable_changes: %s of %s\n", formatCount(res.StableChanges), formatCount(res.TotalChanges))
		fmt.Fprintf(&b, "- changes_after_publication: %s\n", formatCount(res.ChangesAfterPublication))
	}
	fmt.Fprintf(&b, "- commits: %s\n", formatCount(res.Commits))
	if res.BaselineSHA != "" {
		fmt.Fprintf(&b, "- baseline: %s\n", shortSHA(res.BaselineSHA))
	}
	if res.BoundarySHA != "" {
		fmt.Fprintf(&b, "- first_significant: %s\n", shortSHA(res.BoundarySHA))
	}
	if res.HeadSHA != "" {
		fmt.Fprintf(&b, "- head: %s\n", shortSHA(res.HeadSHA))
	}

	return b.String()
}

func renderTeamSection(res metrics.TeamResult, includeSamples bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Team (%s, %d days)\n", res.Window.Name, res.Window.Days)
	fmt.Fprintf(&b, "- range: %s to %s\n", formatTime(res.Start), formatTime(res.End))

	switch res.Status {
	case metrics.StatusNoData:
		fmt.Fprintf(&b, "- pull_requests: no data (%s)\n", res.Details.Reason)
	case metrics.StatusUnavailable:
		fmt.Fprintf(&b, "- pull_requests: %s\n", withReason(res.Details))
	default:
		writeTeamMetrics(&b, res.Metrics, includeSamples)
	}

	b.WriteString("\n### Release Window\n")
	rw := res.Release
	switch rw.Status {
	case metrics.StatusNoData:
		fmt.Fprintf(&b, "- releases: no data (%s)\n", rw.Details.Reason)
	case metrics.StatusUnavailable:
		fmt.Fprintf(&b, "- releases: %s\n", withReason(rw.Details))
	default:
		fmt.Fprintf(&b, "- releases: %s\n", formatCount(rw.Releases))
		fmt.Fprintf(&b, "- deploy_frequency: %s\n", formatRated(rw.DeployFrequency, " per week"))
		fmt.Fprintf(&b, "- cycle_time_average: %s", formatHours(rw.CycleTime.AverageHours))
		if rw.CycleTime.Rating != "" {
			fmt.Fprintf(&b, " (%s)", rw.CycleTime.Rating)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "- cycle_time_range: %s to %s over %s commits\n",
			formatHours(rw.CycleTime.MinHours), formatHours(rw.CycleTime.MaxHours), formatCount(rw.CycleTime.Commits))
	}

	return b.String()
}

func writeTeamMetrics(b *strings.Builder, m *metrics.TeamMetrics, includeSamples bool) {
	if m == nil {
		return
	}

	fmt.Fprintf(b, "- pull_requests: %s (merged %s, authors %s)\n",
		formatCount(m.PullRequests), formatCount(m.Merged), formatCount(m.Authors))
	fmt.Fprintf(b, "- pickup_time: %s\n", formatRated(m.Pickup, "h"))
	fmt.Fprintf(b, "- approve_time: %s\n", formatRated(m.Approve, "h"))
	fmt.Fprintf(b, "- merge_time: %s\n", formatRated(m.Merge, "h"))
	fmt.Fprintf(b, "- merge_frequency: %s\n", formatRated(m.MergeFrequency, " per author per week"))
	if m.Maturity != nil {
		fmt.Fprintf(b, "- maturity: %s\n", formatRated(*m.Maturity, "%"))
	}

	if m.PredominantSize == "" {
		b.WriteString("- size_distribution: none labelled\n")
	} else {
		parts := make([]string, 0, len(m.SizeDistribution))
		for _, share := range m.SizeDistribution {
			parts = append(parts, fmt.Sprintf("%s %s%%", share.Category, formatNumber(share.Percent)))
		}
		fmt.Fprintf(b, "- size_distribution: %s\n", strings.Join(parts, ", "))
		fmt.Fprintf(b, "- predominant_size: %s (%s)\n", m.PredominantSize, m.PRSizeRating)
	}

	if !includeSamples || len(m.Samples) == 0 {
		return
	}
	b.WriteString("\n| PR | Author | Pickup | Approve | Merge | Size |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range m.Samples {
		size := s.SizeCategory
		if size == "" {
			size = "-"
		}
		fmt.Fprintf(b, "| #%d | %s | %s | %s | %s | %s |\n",
			s.Number, s.Author, formatHours(s.PickupHours), formatHours(s.ApproveHours), formatHours(s.MergeHours), size)
	}
}
