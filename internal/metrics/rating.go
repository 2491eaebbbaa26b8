package metrics

// Rating is a qualitative performance band.
type Rating string

const (
	// RatingElite is the best band.
	RatingElite Rating = "Elite"
	// RatingGood is the second band.
	RatingGood Rating = "Good"
	// RatingFair is the third band.
	RatingFair Rating = "Fair"
	// RatingNeedsFocus covers every value past the Fair cut point.
	RatingNeedsFocus Rating = "Needs Focus"
)

// RatingBand holds the three cut points separating the four ratings.
// For lower-is-better metrics a value at or below Elite rates Elite, at or
// below Good rates Good and so on. HigherIsBetter flips the comparisons.
type RatingBand struct {
	Elite          float64 `json:"elite" yaml:"elite" toml:"elite"`
	Good           float64 `json:"good" yaml:"good" toml:"good"`
	Fair           float64 `json:"fair" yaml:"fair" toml:"fair"`
	HigherIsBetter bool    `json:"higher_is_better" yaml:"higher_is_better" toml:"higher_is_better"`
}

// Rate places v in the band.
func (b RatingBand) Rate(v float64) Rating {
	if b.HigherIsBetter {
		switch {
		case v >= b.Elite:
			return RatingElite
		case v >= b.Good:
			return RatingGood
		case v >= b.Fair:
			return RatingFair
		}
		return RatingNeedsFocus
	}

	switch {
	case v <= b.Elite:
		return RatingElite
	case v <= b.Good:
		return RatingGood
	case v <= b.Fair:
		return RatingFair
	}
	return RatingNeedsFocus
}

func (b RatingBand) ordered() bool {
	if b.HigherIsBetter {
		return b.Elite >= b.Good && b.Good >= b.Fair
	}
	return b.Elite <= b.Good && b.Good <= b.Fair
}

// RatingBands groups the band of every rated metric.
type RatingBands struct {
	// Hours from ready-for-review to first review activity.
	Pickup RatingBand `json:"pickup" yaml:"pickup" toml:"pickup"`
	// Hours from the last activity before approval to the approval.
	Approve RatingBand `json:"approve" yaml:"approve" toml:"approve"`
	// Hours from approval to merge.
	Merge RatingBand `json:"merge" yaml:"merge" toml:"merge"`
	// Hours from commit to release.
	CycleTime RatingBand `json:"cycle_time" yaml:"cycle_time" toml:"cycle_time"`
	// Releases per week.
	DeployFrequency RatingBand `json:"deploy_frequency" yaml:"deploy_frequency" toml:"deploy_frequency"`
	// Merged pull requests per author per week.
	MergeFrequency RatingBand `json:"merge_frequency" yaml:"merge_frequency" toml:"merge_frequency"`
	// Zero-based index of the predominant size tier.
	PRSize RatingBand `json:"pr_size" yaml:"pr_size" toml:"pr_size"`
	// Average maturity percentage.
	PRMaturity RatingBand `json:"pr_maturity" yaml:"pr_maturity" toml:"pr_maturity"`
}

// DefaultRatingBands returns the industry bands used when none are configured.
func DefaultRatingBands() RatingBands {
	return RatingBands{
		Pickup:          RatingBand{Elite: 1, Good: 4, Fair: 16},
		Approve:         RatingBand{Elite: 3, Good: 14, Fair: 24},
		Merge:           RatingBand{Elite: 1, Good: 3, Fair: 16},
		CycleTime:       RatingBand{Elite: 48, Good: 118, Fair: 209},
		DeployFrequency: RatingBand{Elite: 7, Good: 3.5, Fair: 1.4, HigherIsBetter: true},
		MergeFrequency:  RatingBand{Elite: 2, Good: 1.5, Fair: 1, HigherIsBetter: true},
		PRSize:          RatingBand{Elite: 0, Good: 1, Fair: 2},
		PRMaturity:      RatingBand{Elite: 91, Good: 87, Fair: 83, HigherIsBetter: true},
	}
}

type namedBand struct {
	name string
	band RatingBand
}

func (b RatingBands) each() []namedBand {
	return []namedBand{
		{"pickup", b.Pickup},
		{"approve", b.Approve},
		{"merge", b.Merge},
		{"cycle_time", b.CycleTime},
		{"deploy_frequency", b.DeployFrequency},
		{"merge_frequency", b.MergeFrequency},
		{"pr_size", b.PRSize},
		{"pr_maturity", b.PRMaturity},
	}
}

// RatedValue is an averaged metric with its rating. Value is nil when no
// sample was available.
type RatedValue struct {
	Value   *float64 `json:"value" yaml:"value"`
	Samples int      `json:"samples" yaml:"samples"`
	Rating  Rating   `json:"rating,omitempty" yaml:"rating,omitempty"`
}

func rateSamples(samples []float64, band RatingBand) RatedValue {
	s, ok := summarize(samples)
	if !ok {
		return RatedValue{}
	}
	return RatedValue{
		Value:   ptr(s.Mean),
		Samples: s.N,
		Rating:  band.Rate(s.Mean),
	}
}
