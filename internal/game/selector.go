package game

import (
	"math"
	"math/rand"
	"sort"
)

// Weight adjustment factors, in percent. The exact magnitudes are tuning
// knobs; the relative ordering is what matters: templates matching the
// player's build beat otherwise-equal ones that do not, employed players
// see more career content, and low-happiness players see more life events.
const (
	statMatchBoostPct      = 150
	employedCareerBoostPct = 150
	strugglingLifeBoostPct = 160

	lowHappinessThreshold = 30
)

// EligibleTemplates applies the hard filters: active flag, age window,
// career requirement, relationship requirement, and the exclusion set.
func EligibleTemplates(templates []EventTemplate, state GameState, excluded map[string]bool) []EventTemplate {
	out := make([]EventTemplate, 0, len(templates))
	for _, t := range templates {
		if !t.Active {
			continue
		}
		if state.CurrentAge < t.MinAge || state.CurrentAge > t.MaxAge {
			continue
		}
		if t.RequiredCareer != "" && t.RequiredCareer != state.CareerID {
			continue
		}
		if t.RequiredRelationship != nil && *t.RequiredRelationship != state.IsInRelationship {
			continue
		}
		if excluded[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// adjustedWeight computes a template's final selection weight from its
// rarity base and the stat-based boost rules. Never below 1 for an
// eligible template.
func adjustedWeight(t EventTemplate, state GameState, profile PlayerProfile) int64 {
	w := int64(t.Rarity.BaseWeight())
	if len(t.MinStats) > 0 && meetsMinStats(t, profile) {
		w = w * statMatchBoostPct / 100
	}
	if t.Category == CategoryCareer && state.CareerID != "" {
		w = w * employedCareerBoostPct / 100
	}
	if t.Category == CategoryLife && profile.Happiness < lowHappinessThreshold {
		w = w * strugglingLifeBoostPct / 100
	}
	if t.WeightMultiplier > 0 {
		w = int64(math.Round(float64(w) * t.WeightMultiplier))
	}
	if w < 1 {
		w = 1
	}
	return w
}

func meetsMinStats(t EventTemplate, profile PlayerProfile) bool {
	for stat, min := range t.MinStats {
		if profile.Stat(stat) < min {
			return false
		}
	}
	return true
}

// SelectEvent filters the catalog for the session's context and draws one
// template by cumulative adjusted weight. Returns nil when nothing is
// eligible; that is a normal "no event this tick", not an error.
//
// The walk order is stable (ascending rarity tier, then template id) so a
// fixed random source reproduces the same draw.
func SelectEvent(rng *rand.Rand, templates []EventTemplate, state GameState, profile PlayerProfile, excluded map[string]bool) *EventTemplate {
	eligible := EligibleTemplates(templates, state, excluded)
	if len(eligible) == 0 {
		return nil
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Rarity.Tier() != eligible[j].Rarity.Tier() {
			return eligible[i].Rarity.Tier() < eligible[j].Rarity.Tier()
		}
		return eligible[i].ID < eligible[j].ID
	})

	var total int64
	weights := make([]int64, len(eligible))
	for i, t := range eligible {
		weights[i] = adjustedWeight(t, state, profile)
		total += weights[i]
	}

	roll := rng.Int63n(total) + 1
	for i := range eligible {
		roll -= weights[i]
		if roll <= 0 {
			return &eligible[i]
		}
	}
	// Unreachable: the weights sum to total.
	return &eligible[len(eligible)-1]
}
