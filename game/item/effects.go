package item

import (
	"fmt"
	"math"
	"time"

	"github.com/aoisora/srpg-server/game/player"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EffectResult is the outcome of applying one effect to a character.
type EffectResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ValueApplied int    `json:"value_applied"`
	EffectID     string `json:"effect_id"`
}

// EffectApplier is the capability the inventory and equipment managers
// need from the effect system.
type EffectApplier interface {
	ApplyEffect(effect ItemEffect, characterID int64, ch *player.Character) EffectResult
	RemoveEffect(effectID string, characterID int64) bool
}

// ActiveEffect is one tracked, time-limited application of an effect to
// a character. Remaining counts turns; the entry is dropped when it
// reaches zero.
type ActiveEffect struct {
	InstanceID  string     `json:"instance_id"`
	Effect      ItemEffect `json:"effect"`
	CharacterID int64      `json:"character_id"`
	Remaining   int        `json:"remaining"`
	AppliedAt   time.Time  `json:"applied_at"`
}

// EffectSystem applies item effects to characters and tracks the timed
// ones per character. Callers serialize access: every public method runs
// to completion on the single game-update path, so there is no internal
// locking.
type EffectSystem struct {
	active map[int64][]*ActiveEffect
	logger *zap.Logger
}

// NewEffectSystem creates an EffectSystem.
func NewEffectSystem(logger *zap.Logger) *EffectSystem {
	return &EffectSystem{
		active: make(map[int64][]*ActiveEffect),
		logger: logger,
	}
}

func failure(msg string, effectID string) EffectResult {
	return EffectResult{Success: false, Message: msg, EffectID: effectID}
}

// ApplyEffect applies effect to ch. The value is floored to a whole
// number before use. On success, a non-permanent effect with a positive
// duration is registered for per-turn expiry.
func (es *EffectSystem) ApplyEffect(effect ItemEffect, characterID int64, ch *player.Character) EffectResult {
	if ch == nil {
		return failure("no target character", effect.ID)
	}
	if effect.ID == "" {
		return failure("effect has no id", "")
	}
	if !effect.Type.Valid() {
		return failure(fmt.Sprintf("unknown effect type %q", effect.Type), effect.ID)
	}
	if effect.Duration < 0 {
		return failure("effect duration must not be negative", effect.ID)
	}

	value := int(math.Floor(effect.Value))
	res := EffectResult{Success: true, EffectID: effect.ID}

	switch effect.Type {
	case EffectHPRecovery:
		res.ValueApplied = ch.Heal(value)
		res.Message = fmt.Sprintf("restored %d HP", res.ValueApplied)
	case EffectMPRecovery:
		res.ValueApplied = ch.RestoreMP(value)
		res.Message = fmt.Sprintf("restored %d MP", res.ValueApplied)
	case EffectStatBoost:
		if !ch.AdjustStat(effect.Target, value) {
			return failure(fmt.Sprintf("unknown stat %q", effect.Target), effect.ID)
		}
		res.ValueApplied = value
		res.Message = fmt.Sprintf("%s increased by %d", effect.Target, value)
	case EffectStatReduction:
		if !ch.AdjustStat(effect.Target, -value) {
			return failure(fmt.Sprintf("unknown stat %q", effect.Target), effect.ID)
		}
		res.ValueApplied = -value
		res.Message = fmt.Sprintf("%s reduced by %d", effect.Target, value)
	case EffectStatusCure:
		// Cures the oldest status; an empty list is not an error.
		if cured, ok := ch.CureStatus(); ok {
			res.Message = fmt.Sprintf("cured %s", cured)
		} else {
			res.Message = "no status to cure"
		}
	case EffectStatusInflict:
		ch.InflictStatus(effect.Target)
		res.Message = fmt.Sprintf("inflicted %s", effect.Target)
	case EffectDamage:
		res.ValueApplied = ch.Damage(value)
		res.Message = fmt.Sprintf("dealt %d damage", res.ValueApplied)
	case EffectShield:
		// Shields are not simulated yet; acknowledged without mutation.
		res.Message = "shield effect acknowledged"
	}

	if res.Success && !effect.IsPermanent && effect.Duration > 0 {
		es.track(effect, characterID)
	}
	return res
}

// track registers a timed effect. A non-stackable effect that is already
// active on the character is replaced (duration reset) instead of added.
func (es *EffectSystem) track(effect ItemEffect, characterID int64) {
	if !effect.Stackable {
		for _, ae := range es.active[characterID] {
			if ae.Effect.ID == effect.ID {
				ae.Effect = effect
				ae.Remaining = effect.Duration
				ae.AppliedAt = time.Now()
				es.logger.Debug("effect refreshed",
					zap.String("effect", effect.ID),
					zap.Int64("char_id", characterID),
					zap.Int("duration", effect.Duration))
				return
			}
		}
	}
	es.active[characterID] = append(es.active[characterID], &ActiveEffect{
		InstanceID:  uuid.NewString(),
		Effect:      effect,
		CharacterID: characterID,
		Remaining:   effect.Duration,
		AppliedAt:   time.Now(),
	})
}

// RemoveEffect drops a single tracked entry by effect id. It only stops
// future expiry tracking; mutations already applied to the character are
// not reversed here (equipment stat deltas are reversed by the
// equipment manager).
func (es *EffectSystem) RemoveEffect(effectID string, characterID int64) bool {
	list := es.active[characterID]
	for i, ae := range list {
		if ae.Effect.ID == effectID {
			es.active[characterID] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateTemporaryEffects advances every tracked effect by exactly one
// turn and returns the entries that expired. The deltaTime argument is
// accepted for interface compatibility but each call is one discrete
// turn; calling it more or less than once per turn changes effect
// lifetimes.
func (es *EffectSystem) UpdateTemporaryEffects(deltaTime float64) []*ActiveEffect {
	_ = deltaTime
	var expired []*ActiveEffect
	for charID, list := range es.active {
		kept := list[:0]
		for _, ae := range list {
			ae.Remaining--
			if ae.Remaining <= 0 {
				expired = append(expired, ae)
				continue
			}
			kept = append(kept, ae)
		}
		if len(kept) == 0 {
			delete(es.active, charID)
		} else {
			es.active[charID] = kept
		}
	}
	if len(expired) > 0 {
		es.logger.Debug("effects expired", zap.Int("count", len(expired)))
	}
	return expired
}

// GetActiveEffects returns a read view of the effects currently tracked
// for a character.
func (es *EffectSystem) GetActiveEffects(characterID int64) []ItemEffect {
	list := es.active[characterID]
	out := make([]ItemEffect, 0, len(list))
	for _, ae := range list {
		out = append(out, ae.Effect)
	}
	return out
}
