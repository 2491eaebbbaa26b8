package cli

import (
	"context"
	"fmt"

	"github.com/johnqtcg/shipmetrics/internal/config"
	"github.com/johnqtcg/shipmetrics/internal/report"
)

func (a *App) runBatch(ctx context.Context, cfg config.Config, collector MetricsCollector, renderer report.Renderer) (RunSummary, error) {
	var items []ItemResult

	err := a.inputReader.Read(cfg.InputFile, func(line string) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		item, processErr := a.processOne(ctx, cfg, ModeBatch, line, collector, renderer)
		if processErr != nil {
			item.Status = StatusFailed
			item.Reason = processErr.Error()
		}
		items = append(items, item)
		writeStatusLine(a.stdout, item)
		return nil
	})
	if err != nil {
		return BuildSummary(items), fmt.Errorf("read batch input file %q: %w", cfg.InputFile, err)
	}

	return BuildSummary(items), nil
}
