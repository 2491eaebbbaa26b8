package collect

import (
	"fmt"
	"strings"
)

// Family names one group of metrics computed by the collector.
type Family string

const (
	FamilyRelease  Family = "release"
	FamilySize     Family = "pr-size"
	FamilyMaturity Family = "pr-maturity"
	FamilyTeam     Family = "team"
)

// AllFamilies lists every family in report order.
func AllFamilies() []Family {
	return []Family{FamilyRelease, FamilySize, FamilyMaturity, FamilyTeam}
}

// PullRequestOnly reports whether the family needs a pull request target.
func (f Family) PullRequestOnly() bool {
	return f == FamilySize || f == FamilyMaturity
}

// ParseFamilies parses a comma separated family list. An empty list selects
// every family. Duplicates are dropped and report order is restored.
func ParseFamilies(raw string) ([]Family, error) {
	if strings.TrimSpace(raw) == "" {
		return AllFamilies(), nil
	}

	seen := make(map[Family]bool)
	for _, part := range strings.Split(raw, ",") {
		name := Family(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !name.valid() {
			return nil, fmt.Errorf("unknown metric family %q", part)
		}
		seen[name] = true
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no metric family in %q", raw)
	}

	out := make([]Family, 0, len(seen))
	for _, f := range AllFamilies() {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (f Family) valid() bool {
	for _, known := range AllFamilies() {
		if f == known {
			return true
		}
	}
	return false
}
