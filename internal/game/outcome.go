package game

// Effect is one decoded entry of a decision's declarative outcome payload.
// The flat key format ("healthBoost": 10, "careerChange": "doctor", ...) is
// the stored contract; Effect is how the engine reasons about it after
// parsing.
type Effect struct {
	Kind EffectKind

	// EffectStatDelta
	Stat  Stat
	Delta int64

	// EffectCareerChange
	CareerID string

	// EffectRelationshipChange
	InRelationship bool
}

type EffectKind int

const (
	EffectStatDelta EffectKind = iota
	EffectCareerChange
	EffectRelationshipChange
)

const (
	keyHealthBoost        = "healthBoost"
	keyHealthPenalty      = "healthPenalty"
	keyHappinessBoost     = "happinessBoost"
	keyHappinessPenalty   = "happinessPenalty"
	keyWealthChange       = "wealthChange"
	keyIntelligenceBoost  = "intelligenceBoost"
	keyCharismaBoost      = "charismaBoost"
	keyPhysicalBoost      = "physicalBoost"
	keyCreativityBoost    = "creativityBoost"
	keyCareerChange       = "careerChange"
	keyRelationshipChange = "relationshipChange"
)

// statDeltaKeys fixes both the recognized stat-effect keys and the order in
// which a payload is walked, so parsing is reproducible regardless of map
// iteration order.
var statDeltaKeys = []struct {
	key  string
	stat Stat
	sign int64
}{
	{keyHealthBoost, StatHealth, 1},
	{keyHealthPenalty, StatHealth, -1},
	{keyHappinessBoost, StatHappiness, 1},
	{keyHappinessPenalty, StatHappiness, -1},
	{keyWealthChange, StatWealth, 1},
	{keyIntelligenceBoost, StatIntelligence, 1},
	{keyCharismaBoost, StatCharisma, 1},
	{keyPhysicalBoost, StatPhysical, 1},
	{keyCreativityBoost, StatCreativity, 1},
}

// ParseOutcome decodes a flat outcome payload into typed effects.
// Unrecognized keys are ignored, not errors: stored content may carry keys
// added by newer authoring tools.
func ParseOutcome(payload map[string]any) []Effect {
	if len(payload) == 0 {
		return nil
	}
	effects := make([]Effect, 0, len(payload))
	for _, k := range statDeltaKeys {
		raw, ok := payload[k.key]
		if !ok {
			continue
		}
		n, ok := numericValue(raw)
		if !ok || n == 0 {
			continue
		}
		effects = append(effects, Effect{
			Kind:  EffectStatDelta,
			Stat:  k.stat,
			Delta: k.sign * n,
		})
	}
	if raw, ok := payload[keyCareerChange]; ok {
		if career, ok := raw.(string); ok {
			effects = append(effects, Effect{Kind: EffectCareerChange, CareerID: career})
		}
	}
	if raw, ok := payload[keyRelationshipChange]; ok {
		if b, ok := boolValue(raw); ok {
			effects = append(effects, Effect{Kind: EffectRelationshipChange, InRelationship: b})
		}
	}
	return effects
}

// numericValue coerces the value types produced by JSON and YAML decoding.
func numericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}

func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return b != 0, true
	case int64:
		return b != 0, true
	case float64:
		return b != 0, true
	default:
		return false, false
	}
}
