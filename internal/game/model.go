package game

import (
	"errors"
	"fmt"
	"time"
)

const monthsPerYear = 12

// Rarity tiers order event templates from most to least likely.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Base selection weights per rarity tier. They sum to 100.
const (
	weightCommon    = 70
	weightUncommon  = 20
	weightRare      = 7
	weightEpic      = 2
	weightLegendary = 1
)

var rarityTiers = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

func (r Rarity) Valid() bool {
	_, ok := rarityTiers[r]
	return ok
}

// Tier returns the walk-order index, COMMON first.
func (r Rarity) Tier() int {
	return rarityTiers[r]
}

func (r Rarity) BaseWeight() int {
	switch r {
	case RarityCommon:
		return weightCommon
	case RarityUncommon:
		return weightUncommon
	case RarityRare:
		return weightRare
	case RarityEpic:
		return weightEpic
	case RarityLegendary:
		return weightLegendary
	default:
		return 0
	}
}

type Category string

const (
	CategoryLife         Category = "LIFE_EVENT"
	CategoryCareer       Category = "CAREER_EVENT"
	CategoryRelationship Category = "RELATIONSHIP_EVENT"
	CategoryRandom       Category = "RANDOM_EVENT"
	CategoryDaily        Category = "DAILY_CHALLENGE"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLife, CategoryCareer, CategoryRelationship, CategoryRandom, CategoryDaily:
		return true
	}
	return false
}

// Stat identifies one field of the player's stat vector. Outcome
// application dispatches through this enum; unknown identifiers are
// rejected rather than coerced.
type Stat string

const (
	StatHealth       Stat = "health"
	StatHappiness    Stat = "happiness"
	StatWealth       Stat = "wealth"
	StatIntelligence Stat = "intelligence"
	StatCharisma     Stat = "charisma"
	StatPhysical     Stat = "physical"
	StatCreativity   Stat = "creativity"
)

// Stats lists every recognized stat in declaration order.
var Stats = []Stat{
	StatHealth,
	StatHappiness,
	StatWealth,
	StatIntelligence,
	StatCharisma,
	StatPhysical,
	StatCreativity,
}

func (s Stat) Valid() bool {
	switch s {
	case StatHealth, StatHappiness, StatWealth, StatIntelligence, StatCharisma, StatPhysical, StatCreativity:
		return true
	}
	return false
}

var (
	ErrStateNotFound    = errors.New("game state not found")
	ErrProfileNotFound  = errors.New("player profile not found")
	ErrTemplateNotFound = errors.New("event template not found")
	ErrDecisionNotFound = errors.New("decision not found")
	ErrEventNotFound    = errors.New("event occurrence not found")
	ErrDecisionMismatch = errors.New("decision does not belong to event")
	ErrAlreadyResolved  = errors.New("event occurrence already resolved")
	ErrOnCooldown       = errors.New("event generation on cooldown")
	ErrUnknownStat      = errors.New("unknown stat identifier")
	ErrInvalidTemplate  = errors.New("invalid event template")
)

// EventTemplate is a catalog entry: immutable content data describing one
// possible life event and the conditions under which it may fire.
type EventTemplate struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Category             Category       `json:"category"`
	Rarity               Rarity         `json:"rarity"`
	MinAge               int            `json:"min_age"`
	MaxAge               int            `json:"max_age"`
	RequiredCareer       string         `json:"required_career,omitempty"`
	RequiredRelationship *bool          `json:"required_relationship,omitempty"`
	MinStats             map[Stat]int64 `json:"min_stats,omitempty"`
	WeightMultiplier     float64        `json:"weight_multiplier,omitempty"`
	FollowUpID           string         `json:"follow_up_id,omitempty"`
	CooldownYears        int            `json:"cooldown_years,omitempty"`
	Active               bool           `json:"active"`
}

// Validate checks catalog-level invariants before a template is accepted
// into the store.
func (t EventTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTemplate)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %s: bad category %q", ErrInvalidTemplate, t.ID, t.Category)
	}
	if !t.Rarity.Valid() {
		return fmt.Errorf("%w: %s: bad rarity %q", ErrInvalidTemplate, t.ID, t.Rarity)
	}
	if t.MinAge > t.MaxAge {
		return fmt.Errorf("%w: %s: min age %d above max age %d", ErrInvalidTemplate, t.ID, t.MinAge, t.MaxAge)
	}
	for s := range t.MinStats {
		if !s.Valid() {
			return fmt.Errorf("%w: %s: min_stats key %q", ErrInvalidTemplate, t.ID, s)
		}
	}
	return nil
}

// DecisionTemplate is one selectable option on an event template. Outcome
// holds the declarative payload verbatim; it is interpreted at apply time.
type DecisionTemplate struct {
	ID              string         `json:"id"`
	EventTemplateID string         `json:"event_template_id"`
	DisplayText     string         `json:"display_text"`
	Order           int            `json:"order"`
	Outcome         map[string]any `json:"outcome"`
}

// GameState is one player's active playthrough.
type GameState struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	CurrentYear      int       `json:"current_year"`
	CurrentMonth     int       `json:"current_month"`
	CurrentAge       int       `json:"current_age"`
	IsInRelationship bool      `json:"is_in_relationship"`
	RelationshipID   string    `json:"relationship_id,omitempty"`
	CareerID         string    `json:"career_id,omitempty"`
	CareerLevel      int       `json:"career_level"`
	LastEventTime    time.Time `json:"last_event_time"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PlayerProfile is the mutable stat vector. Wealth is unbounded; the other
// stats are conventionally kept in [0,100] by content, and optionally
// clamped by the service.
type PlayerProfile struct {
	UserID               string `json:"user_id"`
	Health               int64  `json:"health"`
	Happiness            int64  `json:"happiness"`
	Wealth               int64  `json:"wealth"`
	Intelligence         int64  `json:"intelligence"`
	Charisma             int64  `json:"charisma"`
	Physical             int64  `json:"physical"`
	Creativity           int64  `json:"creativity"`
	TotalPlaytimeSeconds int64  `json:"total_playtime_seconds"`
	GamesPlayed          int64  `json:"games_played"`
}

// Stat returns the current value of one stat, or 0 for an unknown
// identifier.
func (p PlayerProfile) Stat(s Stat) int64 {
	switch s {
	case StatHealth:
		return p.Health
	case StatHappiness:
		return p.Happiness
	case StatWealth:
		return p.Wealth
	case StatIntelligence:
		return p.Intelligence
	case StatCharisma:
		return p.Charisma
	case StatPhysical:
		return p.Physical
	case StatCreativity:
		return p.Creativity
	default:
		return 0
	}
}

// PlayerEvent records that a template occurred within a session. Append-only.
type PlayerEvent struct {
	ID              int64     `json:"id"`
	StateID         int64     `json:"state_id"`
	EventTemplateID string    `json:"event_template_id"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	Age             int       `json:"age"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlayerDecision records one resolved decision together with a snapshot of
// the outcome payload actually applied. Append-only; later template edits
// never rewrite it.
type PlayerDecision struct {
	ID                 int64          `json:"id"`
	StateID            int64          `json:"state_id"`
	PlayerEventID      int64          `json:"player_event_id"`
	DecisionTemplateID string         `json:"decision_template_id"`
	Outcome            map[string]any `json:"outcome"`
	CreatedAt          time.Time      `json:"created_at"`
}
