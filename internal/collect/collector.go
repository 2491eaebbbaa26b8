package collect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
	"github.com/johnqtcg/shipmetrics/internal/report"
)

// DefaultConcurrency bounds the per pull request fan-out of the team family.
const DefaultConcurrency = 4

// ErrNoFamilyAvailable is part of the Run error when every requested family
// failed. The provider errors are joined alongside it.
var ErrNoFamilyAvailable = goerr.New("no metric family could be computed")

// Options selects what Run computes and which side effects it performs.
type Options struct {
	Families []Family
	// Comment posts the summary as a pull request comment.
	Comment bool
	// Label attaches the size label to the pull request.
	Label bool
	// TeamMaturity samples PR maturity for every pull request in the team window.
	TeamMaturity bool
}

// Collector fetches provider data and feeds it through the metrics engine.
// Provider failures never escape a family; they become unavailable results.
type Collector struct {
	client      github.Client
	cfg         metrics.Config
	filter      *metrics.FileFilter
	logger      *slog.Logger
	now         func() time.Time
	concurrency int
}

// Option customizes a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for degraded lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the wall clock used to place the team window.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// WithConcurrency bounds concurrent per pull request fetches.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a collector. cfg must already be validated.
func New(client github.Client, cfg metrics.Config, opts ...Option) *Collector {
	c := &Collector{
		client:      client,
		cfg:         cfg,
		filter:      metrics.NewFileFilter(cfg.Filter),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run computes the requested families for ref. Families that need a pull
// request are skipped for repository targets. The returned error is non-nil
// only when ctx ends or every computed family is unavailable; the report is
// returned in both cases.
func (c *Collector) Run(ctx context.Context, ref github.ResourceRef, opts Options) (metrics.Report, error) {
	rep := metrics.Report{Target: ref, GeneratedAt: c.now().UTC()}
	if err := ctx.Err(); err != nil {
		return rep, goerr.Wrap(err, "collect canceled")
	}

	families := opts.Families
	if len(families) == 0 {
		families = AllFamilies()
	}

	logger := c.logger.With("target", ref.URL)
	var (
		errs     []error
		computed int
	)
	record := func(err error) {
		computed++
		if err != nil {
			errs = append(errs, err)
		}
	}

	var snap *pullRequestSnapshot
	if ref.Type == github.ResourcePullRequest && (contains(families, FamilySize) || contains(families, FamilyMaturity)) {
		snap = c.fetchPullRequest(ctx, ref, contains(families, FamilyMaturity))
	}

	for _, family := range families {
		if family.PullRequestOnly() && ref.Type != github.ResourcePullRequest {
			logger.Debug("skipping pull request family for repository target", "family", family)
			continue
		}

		switch family {
		case FamilyRelease:
			res, err := c.releases(ctx, ref)
			rep.Release = &res
			record(err)
		case FamilySize:
			res, err := c.sizeFrom(snap)
			rep.Size = &res
			record(err)
		case FamilyMaturity:
			res, err := c.maturityFrom(ctx, ref, snap)
			rep.Maturity = &res
			record(err)
		case FamilyTeam:
			res, err := c.team(ctx, ref, opts.TeamMaturity)
			rep.Team = &res
			record(err)
		}
	}

	for _, err := range errs {
		logger.Warn("metric family unavailable", "error", err)
	}

	if ref.Type == github.ResourcePullRequest {
		rep.Actions = c.applyActions(ctx, ref, rep, opts)
	}

	if err := ctx.Err(); err != nil {
		return rep, goerr.Wrap(err, "collect canceled")
	}
	if computed > 0 && len(errs) == computed {
		causes := append([]error{ErrNoFamilyAvailable}, errs...)
		return rep, goerr.Wrap(errors.Join(causes...), "collect metrics",
			goerr.V("target", ref.URL), goerr.V("families", computed))
	}
	return rep, nil
}

func (c *Collector) applyActions(ctx context.Context, ref github.ResourceRef, rep metrics.Report, opts Options) []metrics.ActionResult {
	var actions []metrics.ActionResult

	if opts.Comment {
		action := metrics.ActionResult{Name: "comment"}
		if err := c.client.CreateComment(ctx, ref, ref.Number, report.Comment(rep)); err != nil {
			c.logger.Error("failed to post comment", "number", ref.Number, "error", err)
			action.Error = err.Error()
		} else {
			action.Done = true
		}
		actions = append(actions, action)
	}

	if opts.Label {
		action := metrics.ActionResult{Name: "label"}
		switch {
		case rep.Size == nil || rep.Size.Status != metrics.StatusOK:
			action.Error = "size is not available"
		default:
			if err := c.client.AddLabels(ctx, ref, ref.Number, rep.Size.Label); err != nil {
				c.logger.Error("failed to add size label", "number", ref.Number, "label", rep.Size.Label, "error", err)
				action.Error = err.Error()
			} else {
				action.Done = true
			}
		}
		actions = append(actions, action)
	}

	return actions
}

func contains(families []Family, f Family) bool {
	for _, family := range families {
		if family == f {
			return true
		}
	}
	return false
}
