package game

import (
	"reflect"
	"testing"
)

func TestParseOutcomeStatDeltas(t *testing.T) {
	payload := map[string]any{
		"healthBoost":      float64(10),
		"happinessPenalty": float64(5),
		"wealthChange":     float64(-200),
	}
	got := ParseOutcome(payload)
	want := []Effect{
		{Kind: EffectStatDelta, Stat: StatHealth, Delta: 10},
		{Kind: EffectStatDelta, Stat: StatHappiness, Delta: -5},
		{Kind: EffectStatDelta, Stat: StatWealth, Delta: -200},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestParseOutcomeOrderIsStable(t *testing.T) {
	payload := map[string]any{
		"creativityBoost":   3,
		"healthBoost":       1,
		"charismaBoost":     4,
		"intelligenceBoost": 2,
	}
	got := ParseOutcome(payload)
	order := []Stat{StatHealth, StatIntelligence, StatCharisma, StatCreativity}
	if len(got) != len(order) {
		t.Fatalf("got %d effects want %d", len(got), len(order))
	}
	for i, s := range order {
		if got[i].Stat != s {
			t.Fatalf("effect %d is %s want %s", i, got[i].Stat, s)
		}
	}
}

func TestParseOutcomeCareerAndRelationship(t *testing.T) {
	got := ParseOutcome(map[string]any{
		"careerChange":       "doctor",
		"relationshipChange": true,
		"happinessBoost":     15,
	})
	if len(got) != 3 {
		t.Fatalf("got %d effects want 3: %+v", len(got), got)
	}
	if got[0].Kind != EffectStatDelta || got[0].Delta != 15 {
		t.Fatalf("stat effect wrong: %+v", got[0])
	}
	if got[1].Kind != EffectCareerChange || got[1].CareerID != "doctor" {
		t.Fatalf("career effect wrong: %+v", got[1])
	}
	if got[2].Kind != EffectRelationshipChange || !got[2].InRelationship {
		t.Fatalf("relationship effect wrong: %+v", got[2])
	}
}

func TestParseOutcomeRelationshipEnd(t *testing.T) {
	got := ParseOutcome(map[string]any{"relationshipChange": false})
	if len(got) != 1 || got[0].Kind != EffectRelationshipChange || got[0].InRelationship {
		t.Fatalf("expected single relationship-end effect, got %+v", got)
	}
}

func TestParseOutcomeIgnoresUnknownAndZero(t *testing.T) {
	payload := map[string]any{
		"luckBoost":    50,
		"healthBoost":  0,
		"wealthChange": "lots",
		"notes":        "authoring metadata",
	}
	if got := ParseOutcome(payload); len(got) != 0 {
		t.Fatalf("expected no effects, got %+v", got)
	}
	if got := ParseOutcome(nil); got != nil {
		t.Fatalf("expected nil for empty payload, got %+v", got)
	}
}

func TestNumericValueCoercions(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{in: 7, want: 7, ok: true},
		{in: int64(-3), want: -3, ok: true},
		{in: float64(12), want: 12, ok: true},
		{in: float32(2), want: 2, ok: true},
		{in: "9", want: 0, ok: false},
		{in: true, want: 0, ok: false},
	}
	for _, tc := range tests {
		got, ok := numericValue(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("numericValue(%v) = (%d, %v) want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
