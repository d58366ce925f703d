package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/aoisora/srpg-server/game/item"
	"github.com/aoisora/srpg-server/game/player"
)

// Session owns one character's runtime game state: the character
// record, its inventory, its equipment and the active effect tracker.
// The item managers themselves are single-threaded; Session's mutex is
// the one serialization point, so every HTTP handler and the auto-save
// task go through these methods.
type Session struct {
	mu sync.Mutex

	CharID    int64
	AccountID int64

	character *player.Character
	inventory *item.Inventory
	equipment *item.EquipmentManager
	effects   *item.EffectSystem

	turn   int64
	logger *zap.Logger
}

// TurnResult reports one game turn: the new turn counter and the
// temporary effects that expired during it.
type TurnResult struct {
	Turn    int64             `json:"turn"`
	Expired []item.ItemEffect `json:"expired"`
}

// Character returns a snapshot copy of the character record.
func (s *Session) Character() player.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := *s.character
	ch.StatusEffects = append([]string(nil), s.character.StatusEffects...)
	return ch
}

// Turn returns the current turn counter.
func (s *Session) Turn() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// AdvanceTurn ticks the game forward one turn. It is the only caller of
// the effect system's duration update: every temporary effect loses one
// turn, and expired ones are reported back.
func (s *Session) AdvanceTurn() TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn++
	expired := s.effects.UpdateTemporaryEffects(1)
	out := TurnResult{Turn: s.turn}
	for _, ae := range expired {
		out.Expired = append(out.Expired, ae.Effect)
		s.logger.Info("effect expired",
			zap.Int64("char_id", s.CharID),
			zap.String("effect_id", ae.Effect.ID),
			zap.Int64("turn", s.turn))
	}
	return out
}

// ---- inventory operations ----

func (s *Session) AddItem(it item.Item, qty int) item.AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.AddItem(it, qty)
}

func (s *Session) RemoveItem(itemID string, qty int) item.RemoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.RemoveItem(itemID, qty)
}

// UseItem consumes one unit of the item on the session's own character.
// A session holds exactly one character, so effects are always applied
// and tracked under s.CharID.
func (s *Session) UseItem(itemID string) item.UseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.UseItem(itemID, s.CharID, s.character)
}

func (s *Session) SortItems(key item.SortKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.SortItems(key)
}

func (s *Session) Items() []item.InventorySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.GetAllItems()
}

func (s *Session) ItemCount(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.GetItemCount(itemID)
}

func (s *Session) InventoryStatus() (used, max int, gold int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.UsedSlots(), s.inventory.MaxSlots(), s.inventory.Gold()
}

func (s *Session) AddGold(n int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.AddGold(n)
}

func (s *Session) SpendGold(n int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.SpendGold(n)
}

// ---- equipment operations ----

func (s *Session) Equip(eq *item.Equipment, slot item.Slot) item.EquipResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.EquipItem(s.CharID, eq, slot, s.character)
}

func (s *Session) Unequip(slot item.Slot) item.UnequipResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.UnequipItem(s.CharID, slot, s.character)
}

func (s *Session) CheckRequirements(eq *item.Equipment) item.RequirementCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.CheckRequirements(eq, s.character)
}

func (s *Session) Equipped() item.EquipmentSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.GetAllEquipment(s.CharID)
}

func (s *Session) AppliedStats() item.EquipmentStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment.AppliedStats(s.CharID)
}

// ActiveEffects returns the temporary effects currently on the character.
func (s *Session) ActiveEffects() []item.ItemEffect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effects.GetActiveEffects(s.CharID)
}

// snapshot serializes the inventory and equipment under the session
// lock and copies the character record for persistence.
func (s *Session) snapshot() (invJSON, eqJSON string, ch player.Character, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invJSON, err = s.inventory.Serialize()
	if err != nil {
		return "", "", player.Character{}, err
	}
	eqJSON, err = s.equipment.Serialize()
	if err != nil {
		return "", "", player.Character{}, err
	}
	ch = *s.character
	ch.StatusEffects = append([]string(nil), s.character.StatusEffects...)
	return invJSON, eqJSON, ch, nil
}
