package report

import (
	"strings"
	"testing"
)

func TestRecordFlattensFamilies(t *testing.T) {
	t.Parallel()

	rows := Record(samplePRReport())
	index := make(map[string]Row, len(rows))
	for _, row := range rows {
		index[row.Family+"."+row.Metric] = row
	}

	tcs := []struct {
		key        string
		wantValue  string
		wantStatus string
	}{
		{key: "release.deployment_frequency_days", wantValue: "9", wantStatus: "ok"},
		{key: "release.lead_time_average_hours", wantValue: "1234.5", wantStatus: "ok"},
		{key: "pr-size.category", wantValue: "m", wantStatus: "ok"},
		{key: "pr-size.changes", wantValue: "120", wantStatus: "ok"},
		{key: "pr-maturity.percentage", wantValue: "", wantStatus: "unavailable"},
	}

	for _, tc := range tcs {
		row, ok := index[tc.key]
		if !ok {
			t.Fatalf("row %q missing from %+v", tc.key, rows)
		}
		if row.Value != tc.wantValue || row.Status != tc.wantStatus {
			t.Fatalf("row %q = %q/%q, want %q/%q", tc.key, row.Value, row.Status, tc.wantValue, tc.wantStatus)
		}
		if row.Target != "octo/repo#42" {
			t.Fatalf("row %q target = %q, want octo/repo#42", tc.key, row.Target)
		}
	}

	if got := index["pr-maturity.percentage"].Detail; !strings.Contains(got, "not found") {
		t.Fatalf("maturity detail = %q, want error text", got)
	}
}

func TestEncodeCSVHeader(t *testing.T) {
	t.Parallel()

	out, err := encodeCSV(Record(sampleRepoReport()))
	if err != nil {
		t.Fatalf("encodeCSV error = %v, want nil", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[0] != "target,family,metric,value,rating,status,detail" {
		t.Fatalf("csv header = %q", lines[0])
	}
	if !strings.Contains(string(out), "octo/repo,team,pickup_hours,2.5,Good,ok,") {
		t.Fatalf("csv missing pickup row\n%s", out)
	}
	if !strings.Contains(string(out), "octo/repo,team-release,releases,0,,no_data,no releases in window") {
		t.Fatalf("csv missing release window row\n%s", out)
	}
}

func TestCommentBody(t *testing.T) {
	t.Parallel()

	body := Comment(samplePRReport())
	required := []string{
		CommentMarker,
		"| Size | **M** (120 changes in 4 files) |",
		"| Maturity | unavailable (post_publication_changes: compare aaaaaaa...ccccccc: not found) |",
		"| Deployment frequency | 9 days |",
		"| Lead time (avg) | 1,234.5h |",
	}
	for _, piece := range required {
		if !strings.Contains(body, piece) {
			t.Fatalf("comment missing %q\n%s", piece, body)
		}
	}
}
