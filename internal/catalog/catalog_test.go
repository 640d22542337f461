package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"lifepath/internal/game"
)

const sampleYAML = `
events:
  - id: first-job
    title: First Job Offer
    category: CAREER_EVENT
    rarity: COMMON
    min_age: 16
    max_age: 25
    decisions:
      - id: first-job-accept
        text: Accept the offer
        order: 1
        outcome:
          careerChange: barista
          wealthChange: 500
      - id: first-job-decline
        text: Keep looking
        order: 2
        outcome:
          happinessPenalty: 5
  - id: lottery-win
    title: Lottery Win
    category: RANDOM_EVENT
    rarity: LEGENDARY
    min_age: 18
    max_age: 90
    weight_multiplier: 0.5
    active: false
`

func TestDecodeSampleFile(t *testing.T) {
	templates, decisions, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("got %d templates want 2", len(templates))
	}
	if len(decisions) != 2 {
		t.Fatalf("got %d decisions want 2", len(decisions))
	}

	job := templates[0]
	if job.ID != "first-job" || job.Category != game.CategoryCareer || job.Rarity != game.RarityCommon {
		t.Fatalf("first template decoded wrong: %+v", job)
	}
	if !job.Active {
		t.Fatalf("active should default to true")
	}
	if templates[1].Active {
		t.Fatalf("explicit active: false ignored")
	}

	accept := decisions[0]
	if accept.EventTemplateID != "first-job" || accept.Order != 1 {
		t.Fatalf("decision linkage wrong: %+v", accept)
	}
	if accept.Outcome["careerChange"] != "barista" {
		t.Fatalf("outcome payload not carried verbatim: %+v", accept.Outcome)
	}
}

func TestDecodeRejectsInvalidTemplate(t *testing.T) {
	bad := `
events:
  - id: broken
    title: Broken
    category: WEATHER
    rarity: COMMON
    min_age: 0
    max_age: 10
`
	_, _, err := Decode(strings.NewReader(bad))
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !errors.Is(err, game.ErrInvalidTemplate) {
		t.Fatalf("error %v not ErrInvalidTemplate", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	bad := `
events:
  - id: typo
    titel: Typo
    category: LIFE_EVENT
    rarity: COMMON
    min_age: 0
    max_age: 10
`
	if _, _, err := Decode(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	templates, decisions, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, templates, decisions); err != nil {
		t.Fatalf("encode: %v", err)
	}
	templates2, decisions2, err := Decode(&buf)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}

	if len(templates2) != len(templates) || len(decisions2) != len(decisions) {
		t.Fatalf("round trip changed counts: %d/%d -> %d/%d",
			len(templates), len(decisions), len(templates2), len(decisions2))
	}
	for i := range templates {
		if templates2[i].ID != templates[i].ID || templates2[i].Active != templates[i].Active {
			t.Fatalf("template %d changed: %+v -> %+v", i, templates[i], templates2[i])
		}
	}
	for i := range decisions {
		if decisions2[i].ID != decisions[i].ID || decisions2[i].EventTemplateID != decisions[i].EventTemplateID {
			t.Fatalf("decision %d changed: %+v -> %+v", i, decisions[i], decisions2[i])
		}
	}
}

func TestEncodeOrdersDecisions(t *testing.T) {
	templates := []game.EventTemplate{
		{ID: "ev", Title: "Event", Category: game.CategoryLife, Rarity: game.RarityCommon, MinAge: 0, MaxAge: 100, Active: true},
	}
	decisions := []game.DecisionTemplate{
		{ID: "b", EventTemplateID: "ev", DisplayText: "Second", Order: 2},
		{ID: "a", EventTemplateID: "ev", DisplayText: "First", Order: 1},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, templates, decisions); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("decisions not ordered by order field: %+v", got)
	}
}
