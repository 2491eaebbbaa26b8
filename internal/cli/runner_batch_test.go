package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/johnqtcg/shipmetrics/internal/config"
	gh "github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
)

func TestAppRunBatchContinueOnErrorAndSummary(t *testing.T) {
	t.Parallel()

	r1 := repoRef("octo", "repo")
	u2 := "https://github.com/octo/repo/issues/2"
	pr3 := gh.ResourceRef{Owner: "octo", Repo: "repo", Number: 3, Type: gh.ResourcePullRequest, URL: "https://github.com/octo/repo/pull/3"}

	degraded := okReport(r1)
	degraded.Release.Status = metrics.StatusUnavailable

	loader := &fakeLoader{
		cfg: config.Config{
			InputFile:  "targets.txt",
			OutputPath: "out",
		},
	}
	refs := &fakeParser{
		refByRaw: map[string]gh.ResourceRef{
			"octo/repo":   r1,
			"octo/repo#3": pr3,
		},
		errByRaw: map[string]error{u2: errors.New("bad reference")},
	}
	collector := &fakeCollector{
		reportByURL: map[string]metrics.Report{
			r1.URL:  degraded,
			pr3.URL: okReport(pr3),
		},
	}
	writer := &fakeOutputWriter{path: "out/report.md", errByURL: map[string]error{}}
	reader := &fakeInputReader{lines: []string{"octo/repo", u2, "octo/repo#3"}}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	app := NewApp(AppDeps{
		Loader:           loader,
		Parser:           refs,
		CollectorFactory: &fakeCollectorFactory{collector: collector},
		RendererFactory:  &fakeRendererFactory{renderer: &fakeRenderer{out: []byte("# ok")}},
		Writer:           writer,
		InputReader:      reader,
		Stdout:           stdout,
		Stderr:           stderr,
	})

	code := app.Run(context.Background(), []string{"--input-file", "targets.txt", "--output", "out"})
	if code != ExitPartialSuccess {
		t.Fatalf("Run exit code = %d, want %d", code, ExitPartialSuccess)
	}
	if len(collector.gotRefs) != 2 {
		t.Fatalf("collect count = %d, want 2 (continue after one failure)", len(collector.gotRefs))
	}
	if reader.gotPath != "targets.txt" {
		t.Fatalf("input path = %q, want targets.txt", reader.gotPath)
	}
	for _, mode := range writer.gotMode {
		if mode != ModeBatch {
			t.Fatalf("writer mode = %q, want batch", mode)
		}
	}
	out := stdout.String()
	expected := []string{
		"OK target=octo/repo type=repository output=out/report.md unavailable=release",
		"OK total=3 succeeded=2 degraded=1 failed=1",
		"FAILED target=" + u2 + " type= reason=parse target",
	}
	for _, piece := range expected {
		if !strings.Contains(out, piece) {
			t.Fatalf("summary missing %q\n%s", piece, out)
		}
	}
}

func TestAppRunBatchAllSuccess(t *testing.T) {
	t.Parallel()

	r1 := repoRef("octo", "one")
	r2 := repoRef("octo", "two")

	app := NewApp(AppDeps{
		Loader: &fakeLoader{
			cfg: config.Config{
				InputFile:  "targets.txt",
				OutputPath: "out",
			},
		},
		Parser: &fakeParser{
			refByRaw: map[string]gh.ResourceRef{r1.URL: r1, r2.URL: r2},
		},
		CollectorFactory: &fakeCollectorFactory{
			collector: &fakeCollector{
				reportByURL: map[string]metrics.Report{r1.URL: okReport(r1), r2.URL: okReport(r2)},
			},
		},
		RendererFactory: &fakeRendererFactory{renderer: &fakeRenderer{out: []byte("# ok")}},
		Writer:          &fakeOutputWriter{path: "out.md"},
		InputReader:     &fakeInputReader{lines: []string{r1.URL, r2.URL}},
		Stdout:          new(bytes.Buffer),
		Stderr:          new(bytes.Buffer),
	})

	code := app.Run(context.Background(), []string{"--input-file", "targets.txt", "--output", "out"})
	if code != ExitOK {
		t.Fatalf("Run exit code = %d, want %d", code, ExitOK)
	}
}

func TestAppRunBatchInputReadFailure(t *testing.T) {
	t.Parallel()

	stderr := new(bytes.Buffer)
	app := NewApp(AppDeps{
		Loader:           &fakeLoader{cfg: config.Config{InputFile: "missing.txt", OutputPath: "out"}},
		Parser:           &fakeParser{},
		CollectorFactory: &fakeCollectorFactory{collector: &fakeCollector{}},
		RendererFactory:  &fakeRendererFactory{renderer: &fakeRenderer{}},
		Writer:           &fakeOutputWriter{},
		InputReader:      &fakeInputReader{err: errors.New("open failed")},
		Stdout:           new(bytes.Buffer),
		Stderr:           stderr,
	})

	code := app.Run(context.Background(), nil)
	if code != ExitRuntime {
		t.Fatalf("Run exit code = %d, want %d", code, ExitRuntime)
	}
	if !strings.Contains(stderr.String(), "read batch input file") {
		t.Fatalf("stderr = %q, want read failure", stderr.String())
	}
}

func TestAppRunBatchStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	r1 := repoRef("octo", "one")
	collector := &fakeCollector{reportByURL: map[string]metrics.Report{r1.URL: okReport(r1)}}
	app := NewApp(AppDeps{
		Loader:           &fakeLoader{cfg: config.Config{InputFile: "targets.txt", OutputPath: "out"}},
		Parser:           &fakeParser{refByRaw: map[string]gh.ResourceRef{r1.URL: r1}},
		CollectorFactory: &fakeCollectorFactory{collector: collector},
		RendererFactory:  &fakeRendererFactory{renderer: &fakeRenderer{}},
		Writer:           &fakeOutputWriter{},
		InputReader:      &fakeInputReader{lines: []string{r1.URL}},
		Stdout:           new(bytes.Buffer),
		Stderr:           new(bytes.Buffer),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := app.Run(ctx, nil)
	if code != ExitRuntime {
		t.Fatalf("Run exit code = %d, want %d", code, ExitRuntime)
	}
	if len(collector.gotRefs) != 0 {
		t.Fatalf("collect count = %d, want 0 after cancel", len(collector.gotRefs))
	}
}
