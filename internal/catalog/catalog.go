// Package catalog reads and writes the authored content files: event
// templates with their decisions, nested per event, in YAML. The outcome
// payloads inside are carried verbatim; the engine interprets them at
// application time.
package catalog

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"lifepath/internal/game"
)

type File struct {
	Events []EventDef `yaml:"events"`
}

type EventDef struct {
	ID                   string           `yaml:"id"`
	Title                string           `yaml:"title"`
	Description          string           `yaml:"description,omitempty"`
	Category             string           `yaml:"category"`
	Rarity               string           `yaml:"rarity"`
	MinAge               int              `yaml:"min_age"`
	MaxAge               int              `yaml:"max_age"`
	RequiredCareer       string           `yaml:"required_career,omitempty"`
	RequiredRelationship *bool            `yaml:"required_relationship,omitempty"`
	MinStats             map[string]int64 `yaml:"min_stats,omitempty"`
	WeightMultiplier     float64          `yaml:"weight_multiplier,omitempty"`
	FollowUpID           string           `yaml:"follow_up_id,omitempty"`
	CooldownYears        int              `yaml:"cooldown_years,omitempty"`
	Active               *bool            `yaml:"active,omitempty"`
	Decisions            []DecisionDef    `yaml:"decisions,omitempty"`
}

type DecisionDef struct {
	ID      string         `yaml:"id"`
	Text    string         `yaml:"text"`
	Order   int            `yaml:"order"`
	Outcome map[string]any `yaml:"outcome,omitempty"`
}

// Decode parses a content file and flattens it into the engine's template
// types. Every template is validated; the first invalid one fails the
// whole file.
func Decode(r io.Reader) ([]game.EventTemplate, []game.DecisionTemplate, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("parse content file: %w", err)
	}

	var templates []game.EventTemplate
	var decisions []game.DecisionTemplate
	for _, def := range file.Events {
		t := game.EventTemplate{
			ID:                   def.ID,
			Title:                def.Title,
			Description:          def.Description,
			Category:             game.Category(def.Category),
			Rarity:               game.Rarity(def.Rarity),
			MinAge:               def.MinAge,
			MaxAge:               def.MaxAge,
			RequiredCareer:       def.RequiredCareer,
			RequiredRelationship: def.RequiredRelationship,
			WeightMultiplier:     def.WeightMultiplier,
			FollowUpID:           def.FollowUpID,
			CooldownYears:        def.CooldownYears,
			Active:               def.Active == nil || *def.Active,
		}
		if len(def.MinStats) > 0 {
			t.MinStats = make(map[game.Stat]int64, len(def.MinStats))
			for k, v := range def.MinStats {
				t.MinStats[game.Stat(k)] = v
			}
		}
		if err := t.Validate(); err != nil {
			return nil, nil, err
		}
		templates = append(templates, t)

		for _, d := range def.Decisions {
			if d.ID == "" {
				return nil, nil, fmt.Errorf("event %s: decision with empty id", def.ID)
			}
			decisions = append(decisions, game.DecisionTemplate{
				ID:              d.ID,
				EventTemplateID: def.ID,
				DisplayText:     d.Text,
				Order:           d.Order,
				Outcome:         d.Outcome,
			})
		}
	}
	return templates, decisions, nil
}

func LoadFile(path string) ([]game.EventTemplate, []game.DecisionTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode regroups flat templates and decisions into the nested file format
// and writes YAML.
func Encode(w io.Writer, templates []game.EventTemplate, decisions []game.DecisionTemplate) error {
	byEvent := make(map[string][]DecisionDef)
	for _, d := range decisions {
		byEvent[d.EventTemplateID] = append(byEvent[d.EventTemplateID], DecisionDef{
			ID:      d.ID,
			Text:    d.DisplayText,
			Order:   d.Order,
			Outcome: d.Outcome,
		})
	}
	for _, defs := range byEvent {
		sort.Slice(defs, func(i, j int) bool {
			if defs[i].Order != defs[j].Order {
				return defs[i].Order < defs[j].Order
			}
			return defs[i].ID < defs[j].ID
		})
	}

	var file File
	for _, t := range templates {
		def := EventDef{
			ID:                   t.ID,
			Title:                t.Title,
			Description:          t.Description,
			Category:             string(t.Category),
			Rarity:               string(t.Rarity),
			MinAge:               t.MinAge,
			MaxAge:               t.MaxAge,
			RequiredCareer:       t.RequiredCareer,
			RequiredRelationship: t.RequiredRelationship,
			WeightMultiplier:     t.WeightMultiplier,
			FollowUpID:           t.FollowUpID,
			CooldownYears:        t.CooldownYears,
			Decisions:            byEvent[t.ID],
		}
		active := t.Active
		def.Active = &active
		if len(t.MinStats) > 0 {
			def.MinStats = make(map[string]int64, len(t.MinStats))
			for k, v := range t.MinStats {
				def.MinStats[string(k)] = v
			}
		}
		file.Events = append(file.Events, def)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(file)
}

func WriteFile(path string, templates []game.EventTemplate, decisions []game.DecisionTemplate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, templates, decisions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
