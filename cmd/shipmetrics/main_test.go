package main

import (
	"context"
	"reflect"
	"testing"
)

type fakeRunner struct {
	code    int
	gotArgs []string
	gotCtx  context.Context
}

func (f *fakeRunner) Run(ctx context.Context, args []string) int {
	f.gotCtx = ctx
	f.gotArgs = append([]string(nil), args...)
	return f.code
}

func TestRunWithRunnerPassThroughArgsAndExitCode(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{code: 4}
	args := []string{"--input-file", "targets.txt", "--output", "out", "--metrics", "release,team"}

	got := runWithRunner(context.Background(), args, runner)
	if got != 4 {
		t.Fatalf("runWithRunner = %d, want 4", got)
	}
	if !reflect.DeepEqual(runner.gotArgs, args) {
		t.Fatalf("runner got args = %#v, want %#v", runner.gotArgs, args)
	}
	if runner.gotCtx == nil {
		t.Fatal("runner got nil context")
	}
}
