package item

import (
	"fmt"
	"strings"

	"github.com/aoisora/srpg-server/game/player"
	"go.uber.org/zap"
)

// EquipmentSet holds the four equipment positions of one character.
type EquipmentSet struct {
	Weapon     *Equipment `json:"weapon"`
	Armor      *Equipment `json:"armor"`
	Accessory1 *Equipment `json:"accessory1"`
	Accessory2 *Equipment `json:"accessory2"`
}

// Get returns the item in the named slot.
func (s *EquipmentSet) Get(slot Slot) *Equipment {
	switch slot {
	case SlotWeapon:
		return s.Weapon
	case SlotArmor:
		return s.Armor
	case SlotAccessory1:
		return s.Accessory1
	case SlotAccessory2:
		return s.Accessory2
	}
	return nil
}

// Set places eq (or nil) in the named slot.
func (s *EquipmentSet) Set(slot Slot, eq *Equipment) {
	switch slot {
	case SlotWeapon:
		s.Weapon = eq
	case SlotArmor:
		s.Armor = eq
	case SlotAccessory1:
		s.Accessory1 = eq
	case SlotAccessory2:
		s.Accessory2 = eq
	}
}

// CharacterEquipment is the per-character equipment state. Applied is
// the cached sum of all equipped stat deltas, recomputed after every
// equip and unequip; it is derived, never authoritative.
type CharacterEquipment struct {
	CharacterID int64          `json:"character_id"`
	Set         EquipmentSet   `json:"set"`
	Applied     EquipmentStats `json:"applied"`
}

// EquipResult reports the outcome of EquipItem.
type EquipResult struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	Replaced *Equipment `json:"replaced,omitempty"`
}

// UnequipResult reports the outcome of UnequipItem.
type UnequipResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Item    *Equipment `json:"item,omitempty"`
}

// RequirementCheck is the full, non-short-circuited evaluation of an
// equipment's requirements against a character.
type RequirementCheck struct {
	CanEquip       bool         `json:"can_equip"`
	FailureReasons []string     `json:"failure_reasons"`
	Missing        Requirements `json:"missing"`
}

// EquipmentManager owns the per-character equipment sets and exchanges
// items with a single Inventory: an equipment instance lives either in
// an inventory slot or in an equipment slot, never both. Callers
// serialize access, as with the other managers.
type EquipmentManager struct {
	chars   map[int64]*CharacterEquipment
	inv     *Inventory
	effects EffectApplier
	logger  *zap.Logger
}

// NewEquipmentManager creates an EquipmentManager bound to inv for item
// exchange and to effects for equipment-borne effect application.
func NewEquipmentManager(inv *Inventory, effects EffectApplier, logger *zap.Logger) *EquipmentManager {
	return &EquipmentManager{
		chars:   make(map[int64]*CharacterEquipment),
		inv:     inv,
		effects: effects,
		logger:  logger,
	}
}

// CheckRequirements evaluates every requirement independently so all
// failure reasons are reported. The job requirement is only enforced
// when the character record carries a job affiliation.
func (em *EquipmentManager) CheckRequirements(eq *Equipment, ch *player.Character) RequirementCheck {
	var check RequirementCheck
	req := eq.Requirements

	if req.Level > 0 && ch.Level < req.Level {
		check.FailureReasons = append(check.FailureReasons, fmt.Sprintf("requires level %d", req.Level))
		check.Missing.Level = req.Level
	}
	if req.Attack > 0 && ch.Stats.Attack < req.Attack {
		check.FailureReasons = append(check.FailureReasons, fmt.Sprintf("requires %d attack", req.Attack))
		check.Missing.Attack = req.Attack
	}
	if req.Defense > 0 && ch.Stats.Defense < req.Defense {
		check.FailureReasons = append(check.FailureReasons, fmt.Sprintf("requires %d defense", req.Defense))
		check.Missing.Defense = req.Defense
	}
	if req.Speed > 0 && ch.Stats.Speed < req.Speed {
		check.FailureReasons = append(check.FailureReasons, fmt.Sprintf("requires %d speed", req.Speed))
		check.Missing.Speed = req.Speed
	}
	if req.Job != "" && ch.Job != "" && req.Job != ch.Job {
		check.FailureReasons = append(check.FailureReasons, fmt.Sprintf("requires job %s", req.Job))
		check.Missing.Job = req.Job
	}

	check.CanEquip = len(check.FailureReasons) == 0
	return check
}

// EquipItem places eq into the named slot of the character, exchanging
// with the inventory. Every precondition aborts the whole operation; a
// failure after the previous item was displaced rolls it back, so the
// operation never strands an item outside both the slot and the
// inventory.
func (em *EquipmentManager) EquipItem(characterID int64, eq *Equipment, slot Slot, ch *player.Character) EquipResult {
	if eq == nil {
		return EquipResult{Message: "no item given"}
	}
	if err := eq.Validate(); err != nil {
		return EquipResult{Message: err.Error()}
	}
	if eq.Slot != slot {
		return EquipResult{Message: fmt.Sprintf("item %s belongs in slot %s, not %s", eq.ID, eq.Slot, slot)}
	}
	if ch == nil {
		return EquipResult{Message: "no character given"}
	}
	if check := em.CheckRequirements(eq, ch); !check.CanEquip {
		return EquipResult{Message: strings.Join(check.FailureReasons, "; ")}
	}

	ce, ok := em.chars[characterID]
	if !ok {
		ce = &CharacterEquipment{CharacterID: characterID}
		em.chars[characterID] = ce
	}

	// Displace the current occupant: remove its effects and stat deltas,
	// then return it to the inventory. If the inventory has no room the
	// whole equip fails with the old item restored.
	old := ce.Set.Get(slot)
	if old != nil {
		em.removeFromCharacter(old, characterID, ch)
		if res := em.inv.AddItem(old.Item, 1); !res.Success {
			em.applyToCharacter(old, characterID, ch)
			return EquipResult{Message: fmt.Sprintf("cannot unequip %s: %s", old.Name, res.Message)}
		}
	}

	// Take the new item out of the inventory. On failure, undo the
	// displacement so the old item is back in the slot, not duplicated.
	if res := em.inv.RemoveItem(eq.ID, 1); !res.Success {
		if old != nil {
			em.inv.RemoveItem(old.ID, 1)
			em.applyToCharacter(old, characterID, ch)
		}
		return EquipResult{Message: fmt.Sprintf("item %s is not in the inventory", eq.ID)}
	}

	ce.Set.Set(slot, eq)
	em.applyToCharacter(eq, characterID, ch)
	em.recomputeApplied(ce)

	em.logger.Debug("item equipped",
		zap.Int64("char_id", characterID),
		zap.String("item", eq.ID),
		zap.String("slot", string(slot)))
	return EquipResult{Success: true, Message: fmt.Sprintf("equipped %s", eq.Name), Replaced: old}
}

// UnequipItem removes the item in the named slot and returns it to the
// inventory. If the inventory cannot take it, the unequip fails and the
// item stays equipped; items are never silently dropped.
func (em *EquipmentManager) UnequipItem(characterID int64, slot Slot, ch *player.Character) UnequipResult {
	ce, ok := em.chars[characterID]
	if !ok {
		return UnequipResult{Message: "character has no equipment"}
	}
	eq := ce.Set.Get(slot)
	if eq == nil {
		return UnequipResult{Message: fmt.Sprintf("nothing equipped in slot %s", slot)}
	}
	if !em.inv.CanAdd(eq.Item, 1) {
		return UnequipResult{Message: "inventory full, item stays equipped"}
	}

	em.removeFromCharacter(eq, characterID, ch)
	ce.Set.Set(slot, nil)
	em.recomputeApplied(ce)
	// Capacity was checked above; this cannot fail.
	em.inv.AddItem(eq.Item, 1)

	em.logger.Debug("item unequipped",
		zap.Int64("char_id", characterID),
		zap.String("item", eq.ID),
		zap.String("slot", string(slot)))
	return UnequipResult{Success: true, Message: fmt.Sprintf("unequipped %s", eq.Name), Item: eq}
}

// GetEquipment returns the item currently in the character's slot, or
// nil. Absence of the character is a normal state, not an error.
func (em *EquipmentManager) GetEquipment(characterID int64, slot Slot) *Equipment {
	ce, ok := em.chars[characterID]
	if !ok {
		return nil
	}
	return ce.Set.Get(slot)
}

// GetAllEquipment returns a defensive copy of the character's 4-slot set.
func (em *EquipmentManager) GetAllEquipment(characterID int64) EquipmentSet {
	ce, ok := em.chars[characterID]
	if !ok {
		return EquipmentSet{}
	}
	var out EquipmentSet
	for _, slot := range Slots {
		if eq := ce.Set.Get(slot); eq != nil {
			copied := *eq
			out.Set(slot, &copied)
		}
	}
	return out
}

// AppliedStats returns the cached sum of the character's equipped stat
// deltas.
func (em *EquipmentManager) AppliedStats(characterID int64) EquipmentStats {
	ce, ok := em.chars[characterID]
	if !ok {
		return EquipmentStats{}
	}
	return ce.Applied
}

// applyToCharacter adds eq's stat deltas to ch and applies its effects.
func (em *EquipmentManager) applyToCharacter(eq *Equipment, characterID int64, ch *player.Character) {
	ch.Stats.Attack += eq.Stats.Attack
	ch.Stats.Defense += eq.Stats.Defense
	ch.Stats.Speed += eq.Stats.Speed
	ch.Stats.Accuracy += eq.Stats.Accuracy
	ch.Stats.Evasion += eq.Stats.Evasion
	if eq.Stats.HP != 0 {
		ch.AdjustStat("hp", eq.Stats.HP)
	}
	if eq.Stats.MP != 0 {
		ch.AdjustStat("mp", eq.Stats.MP)
	}
	if em.effects != nil {
		for _, e := range eq.Effects {
			em.effects.ApplyEffect(e, characterID, ch)
		}
	}
}

// removeFromCharacter reverses applyToCharacter: effects are untracked
// by id and the stat deltas subtracted, clamping current HP/MP down
// when a maximum drops below them.
func (em *EquipmentManager) removeFromCharacter(eq *Equipment, characterID int64, ch *player.Character) {
	if em.effects != nil {
		for _, e := range eq.Effects {
			em.effects.RemoveEffect(e.ID, characterID)
		}
	}
	ch.Stats.Attack -= eq.Stats.Attack
	ch.Stats.Defense -= eq.Stats.Defense
	ch.Stats.Speed -= eq.Stats.Speed
	ch.Stats.Accuracy -= eq.Stats.Accuracy
	ch.Stats.Evasion -= eq.Stats.Evasion
	if eq.Stats.HP != 0 {
		ch.AdjustStat("hp", -eq.Stats.HP)
	}
	if eq.Stats.MP != 0 {
		ch.AdjustStat("mp", -eq.Stats.MP)
	}
}

func (em *EquipmentManager) recomputeApplied(ce *CharacterEquipment) {
	var sum EquipmentStats
	for _, slot := range Slots {
		if eq := ce.Set.Get(slot); eq != nil {
			sum.Add(eq.Stats)
		}
	}
	ce.Applied = sum
}
