package report

import (
	"fmt"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

// Row is one flat key/value entry of a report.
type Row struct {
	Target string `csv:"target" json:"target"`
	Family string `csv:"family" json:"family"`
	Metric string `csv:"metric" json:"metric"`
	Value  string `csv:"value" json:"value"`
	Rating string `csv:"rating" json:"rating,omitempty"`
	Status string `csv:"status" json:"status"`
	Detail string `csv:"detail" json:"detail,omitempty"`
}

type rowWriter struct {
	target string
	family string
	status metrics.Status
	detail string
	rows   []Row
}

func (w *rowWriter) add(metric, value string, rating metrics.Rating) {
	w.rows = append(w.rows, Row{
		Target: w.target,
		Family: w.family,
		Metric: metric,
		Value:  value,
		Rating: string(rating),
		Status: string(w.status),
		Detail: w.detail,
	})
}

func (w *rowWriter) number(metric string, v *float64, rating metrics.Rating) {
	if v == nil {
		w.add(metric, "", "")
		return
	}
	w.add(metric, strconv.FormatFloat(*v, 'f', -1, 64), rating)
}

func (w *rowWriter) count(metric string, v int) {
	w.add(metric, strconv.Itoa(v), "")
}

func detailText(d metrics.Details) string {
	switch {
	case d.Reason != "" && d.Error != "":
		return d.Reason + ": " + d.Error
	case d.Error != "":
		return d.Error
	}
	return d.Reason
}

// Record flattens a report into rows. Unavailable values are empty strings
// with the explanation in Detail.
func Record(rep metrics.Report) []Row {
	w := &rowWriter{target: targetName(rep.Target)}

	if r := rep.Release; r != nil {
		w.family, w.status, w.detail = "release", r.Status, detailText(r.Details)
		w.number("deployment_frequency_days", r.DeploymentFrequencyDays, "")
		if lt := r.LeadTime; lt != nil {
			w.number("lead_time_average_hours", &lt.AverageHours, "")
			w.number("lead_time_oldest_hours", &lt.OldestHours, "")
			w.number("lead_time_newest_hours", &lt.NewestHours, "")
			w.count("lead_time_commits", lt.Commits)
		} else {
			w.number("lead_time_average_hours", nil, "")
		}
	}

	if s := rep.Size; s != nil {
		w.family, w.status, w.detail = "pr-size", s.Status, detailText(s.Details)
		w.add("category", s.Category, "")
		w.count("additions", s.Aggregate.Additions)
		w.count("deletions", s.Aggregate.Deletions)
		w.count("changes", s.Aggregate.Changes)
		w.count("files", s.Aggregate.Files)
	}

	if m := rep.Maturity; m != nil {
		w.family, w.status, w.detail = "pr-maturity", m.Status, detailText(m.Details)
		if m.Percentage != nil {
			w.count("percentage", *m.Percentage)
		} else {
			w.add("percentage", "", "")
		}
		w.number("ratio", m.Ratio, "")
		w.add("reason", string(m.Reason), "")
		w.count("total_changes", m.TotalChanges)
		w.count("stable_changes", m.StableChanges)
	}

	if t := rep.Team; t != nil {
		w.family, w.status, w.detail = "team", t.Status, detailText(t.Details)
		w.add("window", fmt.Sprintf("%s/%d", t.Window.Name, t.Window.Days), "")
		if m := t.Metrics; m != nil {
			w.count("pull_requests", m.PullRequests)
			w.count("merged", m.Merged)
			w.number("pickup_hours", m.Pickup.Value, m.Pickup.Rating)
			w.number("approve_hours", m.Approve.Value, m.Approve.Rating)
			w.number("merge_hours", m.Merge.Value, m.Merge.Rating)
			w.number("merge_frequency", m.MergeFrequency.Value, m.MergeFrequency.Rating)
			w.add("predominant_size", m.PredominantSize, m.PRSizeRating)
			if m.Maturity != nil {
				w.number("maturity_percentage", m.Maturity.Value, m.Maturity.Rating)
			}
		}

		rw := t.Release
		w.family, w.status, w.detail = "team-release", rw.Status, detailText(rw.Details)
		w.count("releases", rw.Releases)
		w.number("deploy_frequency_per_week", rw.DeployFrequency.Value, rw.DeployFrequency.Rating)
		w.number("cycle_time_average_hours", rw.CycleTime.AverageHours, rw.CycleTime.Rating)
	}

	return w.rows
}

func encodeCSV(rows []Row) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return out, nil
}
