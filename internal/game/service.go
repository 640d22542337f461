package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifepath/internal/cache"
	"lifepath/internal/metrics"
)

// Starter stat vector for a freshly created profile.
const (
	StarterHealth       = int64(100)
	StarterHappiness    = int64(50)
	StarterWealth       = int64(1_000)
	StarterMindBodyStat = int64(10)
)

const (
	DefaultEventCooldown = 5 * time.Second
	DefaultCacheTTL      = 5 * time.Minute
	DefaultStartAge      = 18
)

// statColumns maps a stat identifier to its profile column. Outcome
// application goes through this table only; an identifier missing here is
// ErrUnknownStat, never a dynamically built column name.
var statColumns = map[Stat]string{
	StatHealth:       "health",
	StatHappiness:    "happiness",
	StatWealth:       "wealth",
	StatIntelligence: "intelligence",
	StatCharisma:     "charisma",
	StatPhysical:     "physical",
	StatCreativity:   "creativity",
}

// clampedStats are held to [0,100] when clamping is enabled. Wealth and
// the mind/body stats stay unbounded either way.
var clampedStats = map[Stat]bool{
	StatHealth:    true,
	StatHappiness: true,
}

type Options struct {
	EventCooldown time.Duration
	CacheTTL      time.Duration
	// ClampStats keeps health and happiness within [0,100] inside the
	// increment itself. Off by default: content authoring is the
	// conventional guardrail.
	ClampStats bool
	Metrics    *metrics.Recorder
}

// Service is the event engine: template selection, cooldown gating,
// outcome application, and decision resolution over the persistent store.
type Service struct {
	db       *pgxpool.Pool
	cache    cache.Cache
	cooldown *CooldownGate
	log      *slog.Logger
	rec      *metrics.Recorder
	cacheTTL time.Duration
	clamp    bool

	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewService(db *pgxpool.Pool, cch cache.Cache, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EventCooldown <= 0 {
		opts.EventCooldown = DefaultEventCooldown
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Service{
		db:       db,
		cache:    cch,
		cooldown: NewCooldownGate(cch, opts.EventCooldown, logger),
		log:      logger,
		rec:      opts.Metrics,
		cacheTTL: opts.CacheTTL,
		clamp:    opts.ClampStats,
		rand:     mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

const catalogKey = "catalog:events"

func profileKey(userID string) string { return "profile:" + userID }
func stateKey(id int64) string        { return fmt.Sprintf("state:%d", id) }
func decisionsKey(tid string) string  { return "decisions:" + tid }

func (s *Service) EnsurePlayer(ctx context.Context, userID, email, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		username = usernameFromEmail(email)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users.profiles (user_id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, email, username)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO game.profiles
		    (user_id, health, happiness, wealth, intelligence, charisma, physical, creativity)
		VALUES ($1, $2, $3, $4, $5, $5, $5, $5)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, StarterHealth, StarterHappiness, StarterWealth, StarterMindBodyStat)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// StartGame opens a new playthrough at the given age and bumps the
// profile's games_played counter.
func (s *Service) StartGame(ctx context.Context, userID string, startAge int) (GameState, error) {
	if startAge <= 0 {
		startAge = DefaultStartAge
	}
	var out GameState
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO game.states (user_id, current_year, current_month, current_age)
		VALUES ($1, $2, 1, $3)
		RETURNING id, user_id, current_year, current_month, current_age,
		          is_in_relationship, relationship_id, career_id, career_level,
		          last_event_time, created_at, updated_at
	`, userID, time.Now().Year(), startAge).Scan(
		&out.ID, &out.UserID, &out.CurrentYear, &out.CurrentMonth, &out.CurrentAge,
		&out.IsInRelationship, &out.RelationshipID, &out.CareerID, &out.CareerLevel,
		&out.LastEventTime, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return out, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.profiles
		SET games_played = games_played + 1, updated_at = now()
		WHERE user_id = $1
	`, userID); err != nil {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return out, err
	}
	s.cacheDelete(ctx, profileKey(userID))
	return out, nil
}

func (s *Service) GameStateByID(ctx context.Context, stateID int64) (GameState, error) {
	var out GameState
	if s.cacheGetJSON(ctx, stateKey(stateID), "state", &out) {
		return out, nil
	}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, current_year, current_month, current_age,
		       is_in_relationship, relationship_id, career_id, career_level,
		       last_event_time, created_at, updated_at
		FROM game.states
		WHERE id = $1
	`, stateID).Scan(
		&out.ID, &out.UserID, &out.CurrentYear, &out.CurrentMonth, &out.CurrentAge,
		&out.IsInRelationship, &out.RelationshipID, &out.CareerID, &out.CareerLevel,
		&out.LastEventTime, &out.CreatedAt, &out.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return out, ErrStateNotFound
	}
	if err != nil {
		return out, err
	}
	s.cacheSetJSON(ctx, stateKey(stateID), out)
	return out, nil
}

func (s *Service) ProfileByUser(ctx context.Context, userID string) (PlayerProfile, error) {
	var out PlayerProfile
	if s.cacheGetJSON(ctx, profileKey(userID), "profile", &out) {
		return out, nil
	}
	err := s.db.QueryRow(ctx, `
		SELECT user_id, health, happiness, wealth, intelligence, charisma,
		       physical, creativity, total_playtime_seconds, games_played
		FROM game.profiles
		WHERE user_id = $1
	`, userID).Scan(
		&out.UserID, &out.Health, &out.Happiness, &out.Wealth, &out.Intelligence,
		&out.Charisma, &out.Physical, &out.Creativity,
		&out.TotalPlaytimeSeconds, &out.GamesPlayed,
	)
	if err == pgx.ErrNoRows {
		return out, ErrProfileNotFound
	}
	if err != nil {
		return out, err
	}
	s.cacheSetJSON(ctx, profileKey(userID), out)
	return out, nil
}

// advanceCalendar moves one month forward, rolling the year and age over
// every twelfth advance.
func advanceCalendar(year, month, age int) (int, int, int) {
	if month >= monthsPerYear {
		return year + 1, 1, age + 1
	}
	return year, month + 1, age
}

// AdvanceTime moves the session one month forward and credits wall-clock
// time since the last mutation to the profile's playtime counter. The
// state row is locked for the duration so concurrent advances serialize.
func (s *Service) AdvanceTime(ctx context.Context, stateID int64) (GameState, error) {
	var out GameState
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		SELECT id, user_id, current_year, current_month, current_age,
		       is_in_relationship, relationship_id, career_id, career_level,
		       last_event_time, created_at, updated_at
		FROM game.states
		WHERE id = $1
		FOR UPDATE
	`, stateID).Scan(
		&out.ID, &out.UserID, &out.CurrentYear, &out.CurrentMonth, &out.CurrentAge,
		&out.IsInRelationship, &out.RelationshipID, &out.CareerID, &out.CareerLevel,
		&out.LastEventTime, &out.CreatedAt, &out.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return out, ErrStateNotFound
	}
	if err != nil {
		return out, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE game.profiles p
		SET total_playtime_seconds = p.total_playtime_seconds
		        + GREATEST(0, EXTRACT(EPOCH FROM (now() - s.updated_at)))::bigint,
		    updated_at = now()
		FROM game.states s
		WHERE s.id = $1 AND p.user_id = s.user_id
	`, stateID); err != nil {
		return out, err
	}

	out.CurrentYear, out.CurrentMonth, out.CurrentAge =
		advanceCalendar(out.CurrentYear, out.CurrentMonth, out.CurrentAge)
	err = tx.QueryRow(ctx, `
		UPDATE game.states
		SET current_year = $2, current_month = $3, current_age = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, stateID, out.CurrentYear, out.CurrentMonth, out.CurrentAge).Scan(&out.UpdatedAt)
	if err != nil {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return out, err
	}
	s.cacheDelete(ctx, stateKey(stateID), profileKey(out.UserID))
	return out, nil
}

// NextEvent runs one generation tick for the session: cooldown gate,
// eligibility filter, weighted draw, occurrence record, cooldown reset.
// A nil template with nil error means no eligible content this tick.
func (s *Service) NextEvent(ctx context.Context, stateID int64) (*EventTemplate, *PlayerEvent, error) {
	state, err := s.GameStateByID(ctx, stateID)
	if err != nil {
		return nil, nil, err
	}
	if s.cooldown.OnCooldown(ctx, stateID) {
		s.rec.CooldownRejected()
		return nil, nil, ErrOnCooldown
	}
	profile, err := s.ProfileByUser(ctx, state.UserID)
	if err != nil {
		return nil, nil, err
	}
	excluded, err := s.seenTemplateIDs(ctx, stateID)
	if err != nil {
		return nil, nil, err
	}
	templates, err := s.activeTemplates(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	tpl := SelectEvent(s.rand, templates, state, profile, excluded)
	s.mu.Unlock()
	if tpl == nil {
		s.rec.NoEvent()
		return nil, nil, nil
	}

	occ, err := s.RecordEventOccurrence(ctx, stateID, tpl.ID, state)
	if err != nil {
		return nil, nil, err
	}
	s.cooldown.Start(ctx, stateID)
	s.rec.EventGenerated(string(tpl.Category))
	return tpl, &occ, nil
}

// RecordEventOccurrence appends a history row snapshotting when (in game
// time) the template fired, and stamps the session's last_event_time.
func (s *Service) RecordEventOccurrence(ctx context.Context, stateID int64, templateID string, snap GameState) (PlayerEvent, error) {
	out := PlayerEvent{
		StateID:         stateID,
		EventTemplateID: templateID,
		Year:            snap.CurrentYear,
		Month:           snap.CurrentMonth,
		Age:             snap.CurrentAge,
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO game.player_events (state_id, event_template_id, year, month, age)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, stateID, templateID, snap.CurrentYear, snap.CurrentMonth, snap.CurrentAge).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return out, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.states SET last_event_time = now(), updated_at = now() WHERE id = $1
	`, stateID); err != nil {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return out, err
	}
	s.cacheDelete(ctx, stateKey(stateID))
	return out, nil
}

// DecisionsForEvent returns the template's decisions ordered by their
// authored position.
func (s *Service) DecisionsForEvent(ctx context.Context, eventTemplateID string) ([]DecisionTemplate, error) {
	var out []DecisionTemplate
	if s.cacheGetJSON(ctx, decisionsKey(eventTemplateID), "decisions", &out) {
		return out, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, event_template_id, display_text, ord, outcome
		FROM game.decision_templates
		WHERE event_template_id = $1
		ORDER BY ord, id
	`, eventTemplateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM game.event_templates WHERE id = $1)
		`, eventTemplateID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrTemplateNotFound
		}
	}
	s.cacheSetJSON(ctx, decisionsKey(eventTemplateID), out)
	return out, nil
}

// ValidateDecision reports whether the decision belongs to the event
// template behind the given occurrence. Nonexistent decisions and
// occurrences validate to false, not errors.
func (s *Service) ValidateDecision(ctx context.Context, eventOccurrenceID int64, decisionID string) (bool, error) {
	var match bool
	err := s.db.QueryRow(ctx, `
		SELECT d.event_template_id = e.event_template_id
		FROM game.decision_templates d
		JOIN game.player_events e ON e.id = $1
		WHERE d.id = $2
	`, eventOccurrenceID, decisionID).Scan(&match)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return match, nil
}

// DecisionResult is a resolved decision plus the parent template's
// follow-up reference, so callers can chain content without a second
// catalog lookup.
type DecisionResult struct {
	Decision   PlayerDecision `json:"decision"`
	FollowUpID string         `json:"follow_up_id,omitempty"`
}

// ResolveDecision validates the decision against the occurrence, applies
// its outcome payload, and appends the immutable history record with the
// payload snapshot. There is no way to re-answer once recorded.
func (s *Service) ResolveDecision(ctx context.Context, stateID, eventOccurrenceID int64, decisionID string) (DecisionResult, error) {
	var out DecisionResult

	var decision DecisionTemplate
	var rawOutcome []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, event_template_id, display_text, ord, outcome
		FROM game.decision_templates
		WHERE id = $1
	`, decisionID).Scan(&decision.ID, &decision.EventTemplateID, &decision.DisplayText, &decision.Order, &rawOutcome)
	if err == pgx.ErrNoRows {
		return out, ErrDecisionNotFound
	}
	if err != nil {
		return out, err
	}
	if len(rawOutcome) > 0 {
		if err := json.Unmarshal(rawOutcome, &decision.Outcome); err != nil {
			return out, fmt.Errorf("decode outcome payload for %s: %w", decision.ID, err)
		}
	}

	var occUserID, followUpID string
	err = s.db.QueryRow(ctx, `
		SELECT s.user_id, COALESCE(t.follow_up_id, '')
		FROM game.player_events e
		JOIN game.states s ON s.id = e.state_id
		LEFT JOIN game.event_templates t ON t.id = e.event_template_id
		WHERE e.id = $1 AND e.state_id = $2
	`, eventOccurrenceID, stateID).Scan(&occUserID, &followUpID)
	if err == pgx.ErrNoRows {
		return out, ErrEventNotFound
	}
	if err != nil {
		return out, err
	}
	match, err := s.ValidateDecision(ctx, eventOccurrenceID, decisionID)
	if err != nil {
		return out, err
	}
	if !match {
		return out, ErrDecisionMismatch
	}

	// An occurrence takes exactly one decision. Re-answering would re-apply
	// the outcome, so a resolved occurrence is terminal.
	var resolved bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM game.player_decisions WHERE player_event_id = $1)
	`, eventOccurrenceID).Scan(&resolved); err != nil {
		return out, err
	}
	if resolved {
		return out, ErrAlreadyResolved
	}

	effects := ParseOutcome(decision.Outcome)
	if err := s.ApplyOutcome(ctx, stateID, occUserID, effects); err != nil {
		return out, err
	}

	out = DecisionResult{
		Decision: PlayerDecision{
			StateID:            stateID,
			PlayerEventID:      eventOccurrenceID,
			DecisionTemplateID: decision.ID,
			Outcome:            decision.Outcome,
		},
		FollowUpID: followUpID,
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO game.player_decisions
		    (state_id, player_event_id, decision_template_id, outcome)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, stateID, eventOccurrenceID, decision.ID, rawOutcome).Scan(&out.Decision.ID, &out.Decision.CreatedAt)
	if err != nil {
		return out, err
	}
	s.rec.DecisionResolved()
	return out, nil
}

// ApplyOutcome issues one atomic in-database increment per stat effect and
// mutates the session for career/relationship effects. Effects are
// independent deltas: a failure partway leaves earlier increments applied,
// which is preferred over blocking the game loop.
func (s *Service) ApplyOutcome(ctx context.Context, stateID int64, userID string, effects []Effect) error {
	for _, eff := range effects {
		switch eff.Kind {
		case EffectStatDelta:
			if err := s.incrementStat(ctx, userID, eff.Stat, eff.Delta); err != nil {
				return err
			}
		case EffectCareerChange:
			if _, err := s.db.Exec(ctx, `
				UPDATE game.states
				SET career_id = $1,
				    career_level = CASE WHEN $1 = '' THEN 0 ELSE career_level END,
				    updated_at = now()
				WHERE id = $2
			`, eff.CareerID, stateID); err != nil {
				return err
			}
		case EffectRelationshipChange:
			if _, err := s.db.Exec(ctx, `
				UPDATE game.states
				SET is_in_relationship = $1,
				    relationship_id = CASE WHEN $1 THEN relationship_id ELSE '' END,
				    updated_at = now()
				WHERE id = $2
			`, eff.InRelationship, stateID); err != nil {
				return err
			}
		}
	}
	s.cacheDelete(ctx, profileKey(userID), stateKey(stateID))
	return nil
}

// incrementExpr builds the assignment expression for one stat increment.
// Only identifiers in statColumns reach SQL; anything else is
// ErrUnknownStat. Clamping applies to health and happiness only.
func incrementExpr(stat Stat, clamp bool) (column, expr string, err error) {
	column, ok := statColumns[stat]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	expr = column + " + $1"
	if clamp && clampedStats[stat] {
		expr = fmt.Sprintf("LEAST(100, GREATEST(0, %s + $1))", column)
	}
	return column, expr, nil
}

func (s *Service) incrementStat(ctx context.Context, userID string, stat Stat, delta int64) error {
	col, expr, err := incrementExpr(stat, s.clamp)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, fmt.Sprintf(`
		UPDATE game.profiles
		SET %s = %s, updated_at = now()
		WHERE user_id = $2
	`, col, expr), delta, userID)
	return err
}

func (s *Service) EventHistory(ctx context.Context, stateID int64, limit int) ([]PlayerEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, state_id, event_template_id, year, month, age, created_at
		FROM game.player_events
		WHERE state_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, stateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlayerEvent
	for rows.Next() {
		var e PlayerEvent
		if err := rows.Scan(&e.ID, &e.StateID, &e.EventTemplateID, &e.Year, &e.Month, &e.Age, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Service) DecisionHistory(ctx context.Context, stateID int64, limit int) ([]PlayerDecision, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, state_id, player_event_id, decision_template_id, outcome, created_at
		FROM game.player_decisions
		WHERE state_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, stateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlayerDecision
	for rows.Next() {
		var d PlayerDecision
		var raw []byte
		if err := rows.Scan(&d.ID, &d.StateID, &d.PlayerEventID, &d.DecisionTemplateID, &raw, &d.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d.Outcome); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Service) seenTemplateIDs(ctx context.Context, stateID int64) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT event_template_id
		FROM game.player_events
		WHERE state_id = $1
	`, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// activeTemplates loads the live catalog slice, memoized through the cache.
func (s *Service) activeTemplates(ctx context.Context) ([]EventTemplate, error) {
	var out []EventTemplate
	if s.cacheGetJSON(ctx, catalogKey, "catalog", &out) {
		return out, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, title, description, category, rarity, min_age, max_age,
		       required_career, required_relationship, min_stats,
		       weight_multiplier, follow_up_id, cooldown_years, active
		FROM game.event_templates
		WHERE active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cacheSetJSON(ctx, catalogKey, out)
	return out, nil
}

func scanTemplate(rows pgx.Rows) (EventTemplate, error) {
	var t EventTemplate
	var rawMinStats []byte
	err := rows.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Rarity,
		&t.MinAge, &t.MaxAge, &t.RequiredCareer, &t.RequiredRelationship,
		&rawMinStats, &t.WeightMultiplier, &t.FollowUpID, &t.CooldownYears, &t.Active,
	)
	if err != nil {
		return t, err
	}
	if len(rawMinStats) > 0 {
		if err := json.Unmarshal(rawMinStats, &t.MinStats); err != nil {
			return t, fmt.Errorf("decode min_stats for %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func scanDecision(rows pgx.Rows) (DecisionTemplate, error) {
	var d DecisionTemplate
	var raw []byte
	if err := rows.Scan(&d.ID, &d.EventTemplateID, &d.DisplayText, &d.Order, &raw); err != nil {
		return d, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d.Outcome); err != nil {
			return d, fmt.Errorf("decode outcome for %s: %w", d.ID, err)
		}
	}
	return d, nil
}

// cacheGetJSON is best-effort: any cache error counts as a miss and is
// logged, never propagated.
func (s *Service) cacheGetJSON(ctx context.Context, key, kind string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", "key", key, "err", err)
		s.rec.CacheMiss(kind)
		return false
	}
	if !ok {
		s.rec.CacheMiss(kind)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("cache entry corrupt, dropping", "key", key, "err", err)
		_ = s.cache.Delete(ctx, key)
		s.rec.CacheMiss(kind)
		return false
	}
	s.rec.CacheHit(kind)
	return true
}

func (s *Service) cacheSetJSON(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache marshal failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("cache set failed", "key", key, "err", err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache invalidate failed", "keys", strings.Join(keys, ","), "err", err)
	}
}

func usernameFromEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "player"
	}
	return email[:at]
}
