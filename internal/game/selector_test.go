package game

import (
	"math/rand"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func testCatalog() []EventTemplate {
	return []EventTemplate{
		{ID: "coffee-spill", Category: CategoryRandom, Rarity: RarityCommon, MinAge: 10, MaxAge: 90, Active: true},
		{ID: "promotion", Category: CategoryCareer, Rarity: RarityUncommon, MinAge: 20, MaxAge: 65, RequiredCareer: "engineer", Active: true},
		{ID: "anniversary", Category: CategoryRelationship, Rarity: RarityCommon, MinAge: 18, MaxAge: 90, RequiredRelationship: boolPtr(true), Active: true},
		{ID: "lottery-win", Category: CategoryRandom, Rarity: RarityLegendary, MinAge: 18, MaxAge: 90, Active: true},
		{ID: "midlife-crisis", Category: CategoryLife, Rarity: RarityRare, MinAge: 40, MaxAge: 55, Active: true},
		{ID: "retired-event", Category: CategoryLife, Rarity: RarityCommon, MinAge: 10, MaxAge: 90, Active: false},
	}
}

func TestEligibleTemplatesFilters(t *testing.T) {
	catalog := testCatalog()
	state := GameState{CurrentAge: 25}

	got := EligibleTemplates(catalog, state, nil)
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.ID] = true
	}

	if !ids["coffee-spill"] || !ids["lottery-win"] {
		t.Fatalf("expected unrestricted templates to be eligible, got %v", ids)
	}
	if ids["retired-event"] {
		t.Fatalf("inactive template passed the filter")
	}
	if ids["promotion"] {
		t.Fatalf("career-gated template eligible without the career")
	}
	if ids["anniversary"] {
		t.Fatalf("relationship-gated template eligible while single")
	}
	if ids["midlife-crisis"] {
		t.Fatalf("age-gated template eligible at 25")
	}
}

func TestEligibleTemplatesContextGates(t *testing.T) {
	catalog := testCatalog()
	state := GameState{CurrentAge: 45, CareerID: "engineer", IsInRelationship: true}

	got := EligibleTemplates(catalog, state, nil)
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.ID] = true
	}
	for _, want := range []string{"coffee-spill", "promotion", "anniversary", "lottery-win", "midlife-crisis"} {
		if !ids[want] {
			t.Fatalf("expected %s eligible for employed partnered 45yo, got %v", want, ids)
		}
	}
}

func TestEligibleTemplatesExclusionSet(t *testing.T) {
	catalog := testCatalog()
	state := GameState{CurrentAge: 25}
	excluded := map[string]bool{"coffee-spill": true, "lottery-win": true}

	got := EligibleTemplates(catalog, state, excluded)
	if len(got) != 0 {
		t.Fatalf("expected empty set after exclusion, got %d templates", len(got))
	}
}

func TestSelectEventNoneEligible(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	state := GameState{CurrentAge: 5}
	if got := SelectEvent(rng, testCatalog(), state, PlayerProfile{}, nil); got != nil {
		t.Fatalf("expected nil for age outside every window, got %s", got.ID)
	}
	if got := SelectEvent(rng, nil, state, PlayerProfile{}, nil); got != nil {
		t.Fatalf("expected nil for empty catalog, got %s", got.ID)
	}
}

func TestSelectEventDeterministicWithFixedSource(t *testing.T) {
	state := GameState{CurrentAge: 25}
	profile := PlayerProfile{Happiness: 50}
	first := SelectEvent(rand.New(rand.NewSource(42)), testCatalog(), state, profile, nil)
	second := SelectEvent(rand.New(rand.NewSource(42)), testCatalog(), state, profile, nil)
	if first == nil || second == nil {
		t.Fatalf("expected a selection")
	}
	if first.ID != second.ID {
		t.Fatalf("same seed drew %s then %s", first.ID, second.ID)
	}
}

func TestSelectEventOnlyEligibleChoice(t *testing.T) {
	catalog := []EventTemplate{
		{ID: "common-open", Category: CategoryRandom, Rarity: RarityCommon, MinAge: 18, MaxAge: 65, Active: true},
		{ID: "rare-gated", Category: CategoryRandom, Rarity: RarityRare, MinAge: 30, MaxAge: 40, Active: true},
	}
	state := GameState{CurrentAge: 25}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		got := SelectEvent(rng, catalog, state, PlayerProfile{Happiness: 50}, nil)
		if got == nil || got.ID != "common-open" {
			t.Fatalf("draw %d: expected common-open every time, got %v", i, got)
		}
	}
}

func TestSelectEventFrequencyFollowsWeights(t *testing.T) {
	catalog := []EventTemplate{
		{ID: "common-a", Category: CategoryRandom, Rarity: RarityCommon, MinAge: 0, MaxAge: 100, Active: true},
		{ID: "legendary-b", Category: CategoryRandom, Rarity: RarityLegendary, MinAge: 0, MaxAge: 100, Active: true},
	}
	state := GameState{CurrentAge: 30}
	profile := PlayerProfile{Happiness: 50}
	rng := rand.New(rand.NewSource(7))

	const draws = 20000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		got := SelectEvent(rng, catalog, state, profile, nil)
		if got == nil {
			t.Fatalf("draw %d returned nil", i)
		}
		counts[got.ID]++
	}

	// Weights are 70 vs 1, so the common template should win ~98.6% of
	// draws. Allow a generous band.
	commonShare := float64(counts["common-a"]) / draws
	if commonShare < 0.97 || commonShare > 0.995 {
		t.Fatalf("common share %.4f outside [0.97, 0.995]", commonShare)
	}
	if counts["legendary-b"] == 0 {
		t.Fatalf("legendary template never drawn in %d draws", draws)
	}
}

func TestAdjustedWeightBoosts(t *testing.T) {
	state := GameState{CurrentAge: 30}
	profile := PlayerProfile{Happiness: 50, Intelligence: 60}

	plain := EventTemplate{ID: "plain", Category: CategoryRandom, Rarity: RarityCommon, Active: true}
	if got := adjustedWeight(plain, state, profile); got != 70 {
		t.Fatalf("plain common weight got %d want 70", got)
	}

	statMatch := plain
	statMatch.MinStats = map[Stat]int64{StatIntelligence: 50}
	if got := adjustedWeight(statMatch, state, profile); got != 105 {
		t.Fatalf("stat-matched weight got %d want 105", got)
	}

	unmet := plain
	unmet.MinStats = map[Stat]int64{StatIntelligence: 90}
	if got := adjustedWeight(unmet, state, profile); got != 70 {
		t.Fatalf("unmet min_stats should not boost, got %d", got)
	}

	career := EventTemplate{ID: "career", Category: CategoryCareer, Rarity: RarityCommon, Active: true}
	if got := adjustedWeight(career, state, profile); got != 70 {
		t.Fatalf("career weight without career got %d want 70", got)
	}
	employed := state
	employed.CareerID = "engineer"
	if got := adjustedWeight(career, employed, profile); got != 105 {
		t.Fatalf("employed career weight got %d want 105", got)
	}

	life := EventTemplate{ID: "life", Category: CategoryLife, Rarity: RarityCommon, Active: true}
	sad := PlayerProfile{Happiness: 20}
	if got := adjustedWeight(life, state, sad); got != 112 {
		t.Fatalf("struggling life weight got %d want 112", got)
	}
	if got := adjustedWeight(life, state, profile); got != 70 {
		t.Fatalf("content life weight got %d want 70", got)
	}
}

func TestAdjustedWeightMultiplierAndFloor(t *testing.T) {
	state := GameState{CurrentAge: 30}
	profile := PlayerProfile{Happiness: 50}

	doubled := EventTemplate{ID: "x", Category: CategoryRandom, Rarity: RarityLegendary, WeightMultiplier: 2, Active: true}
	if got := adjustedWeight(doubled, state, profile); got != 2 {
		t.Fatalf("doubled legendary weight got %d want 2", got)
	}

	crushed := EventTemplate{ID: "y", Category: CategoryRandom, Rarity: RarityLegendary, WeightMultiplier: 0.1, Active: true}
	if got := adjustedWeight(crushed, state, profile); got != 1 {
		t.Fatalf("weight floor violated, got %d want 1", got)
	}
}
