package game

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// SyncCatalog upserts authored templates and replaces each synced
// template's decision set with the file's. Templates are validated first
// so a bad file never half-applies; the whole sync is one transaction.
func (s *Service) SyncCatalog(ctx context.Context, templates []EventTemplate, decisions []DecisionTemplate) error {
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, t := range templates {
		var minStats []byte
		if len(t.MinStats) > 0 {
			minStats, err = json.Marshal(t.MinStats)
			if err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.event_templates
			    (id, title, description, category, rarity, min_age, max_age,
			     required_career, required_relationship, min_stats,
			     weight_multiplier, follow_up_id, cooldown_years, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
			    title = EXCLUDED.title,
			    description = EXCLUDED.description,
			    category = EXCLUDED.category,
			    rarity = EXCLUDED.rarity,
			    min_age = EXCLUDED.min_age,
			    max_age = EXCLUDED.max_age,
			    required_career = EXCLUDED.required_career,
			    required_relationship = EXCLUDED.required_relationship,
			    min_stats = EXCLUDED.min_stats,
			    weight_multiplier = EXCLUDED.weight_multiplier,
			    follow_up_id = EXCLUDED.follow_up_id,
			    cooldown_years = EXCLUDED.cooldown_years,
			    active = EXCLUDED.active
		`, t.ID, t.Title, t.Description, t.Category, t.Rarity, t.MinAge, t.MaxAge,
			t.RequiredCareer, t.RequiredRelationship, minStats,
			t.WeightMultiplier, t.FollowUpID, t.CooldownYears, t.Active); err != nil {
			return err
		}
	}

	// The authored file is the whole truth for a synced event's decisions:
	// options removed from the file are removed from the store, not left
	// behind by an upsert. History rows snapshot their outcome payloads and
	// are unaffected.
	templateIDs := make([]string, 0, len(templates))
	for _, t := range templates {
		templateIDs = append(templateIDs, t.ID)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM game.decision_templates WHERE event_template_id = ANY($1)
	`, templateIDs); err != nil {
		return err
	}
	for _, d := range decisions {
		outcome, err := json.Marshal(d.Outcome)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.decision_templates
			    (id, event_template_id, display_text, ord, outcome)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
			    event_template_id = EXCLUDED.event_template_id,
			    display_text = EXCLUDED.display_text,
			    ord = EXCLUDED.ord,
			    outcome = EXCLUDED.outcome
		`, d.ID, d.EventTemplateID, d.DisplayText, d.Order, outcome); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	keys := []string{catalogKey}
	for _, id := range templateIDs {
		keys = append(keys, decisionsKey(id))
	}
	s.cacheDelete(ctx, keys...)
	return nil
}

// ExportCatalog reads back the full catalog, inactive templates included.
func (s *Service) ExportCatalog(ctx context.Context) ([]EventTemplate, []DecisionTemplate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, description, category, rarity, min_age, max_age,
		       required_career, required_relationship, min_stats,
		       weight_multiplier, follow_up_id, cooldown_years, active
		FROM game.event_templates
		ORDER BY id
	`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var templates []EventTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	dRows, err := s.db.Query(ctx, `
		SELECT id, event_template_id, display_text, ord, outcome
		FROM game.decision_templates
		ORDER BY event_template_id, ord, id
	`)
	if err != nil {
		return nil, nil, err
	}
	defer dRows.Close()
	var decisions []DecisionTemplate
	for dRows.Next() {
		d, err := scanDecision(dRows)
		if err != nil {
			return nil, nil, err
		}
		decisions = append(decisions, d)
	}
	return templates, decisions, dRows.Err()
}

// RotateDailyChallenges deactivates every DAILY_CHALLENGE template and
// re-activates a random subset of the given size. Run by the worker once
// per rotation period.
func (s *Service) RotateDailyChallenges(ctx context.Context, activeCount int) error {
	if activeCount <= 0 {
		return nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id FROM game.event_templates WHERE category = $1 ORDER BY id
	`, CategoryDaily)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	s.rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	s.mu.Unlock()
	if activeCount > len(ids) {
		activeCount = len(ids)
	}
	picked := ids[:activeCount]

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `
		UPDATE game.event_templates SET active = false WHERE category = $1
	`, CategoryDaily); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.event_templates SET active = true WHERE id = ANY($1)
	`, picked); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.cacheDelete(ctx, catalogKey)
	s.log.Info("daily challenges rotated", "active", len(picked), "pool", len(ids))
	return nil
}
