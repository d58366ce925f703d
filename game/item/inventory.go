package item

import (
	"fmt"
	"sort"

	"github.com/aoisora/srpg-server/game/player"
	"go.uber.org/zap"
)

// DefaultMaxSlots is the inventory capacity used when none is configured.
const DefaultMaxSlots = 100

// SortKey selects the ordering for SortItems.
type SortKey string

const (
	SortByType     SortKey = "type"
	SortByRarity   SortKey = "rarity"
	SortByName     SortKey = "name"
	SortByQuantity SortKey = "quantity"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortByType, SortByRarity, SortByName, SortByQuantity:
		return true
	}
	return false
}

// InventorySlot is one fixed storage position. Empty iff Item is nil
// iff Quantity is 0.
type InventorySlot struct {
	Index    int   `json:"index"`
	Item     *Item `json:"item"`
	Quantity int   `json:"quantity"`
}

// Empty reports whether the slot holds nothing.
func (s *InventorySlot) Empty() bool {
	return s.Item == nil
}

// AddResult reports the outcome of AddItem.
type AddResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Slots   []int  `json:"slots"`
	Total   int    `json:"total"`
}

// RemoveResult reports the outcome of RemoveItem.
type RemoveResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Slots     []int  `json:"slots"`
	Remaining int    `json:"remaining"`
}

// UseResult reports the outcome of UseItem, including the per-effect
// results when a target was given.
type UseResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Effects []EffectResult `json:"effects"`
}

// Inventory is a fixed-capacity slotted item store with gold. One
// instance is owned per game session; operations run to completion on
// the single game-update path, so there is no internal locking.
type Inventory struct {
	slots    []InventorySlot
	used     int
	gold     int64
	maxSlots int
	catalog  Catalog
	effects  EffectApplier
	logger   *zap.Logger
}

// NewInventory creates an empty inventory with maxSlots positions. The
// catalog resolves consumable definitions for UseItem; effects receives
// consumable effect applications. Both are injected up front.
func NewInventory(maxSlots int, catalog Catalog, effects EffectApplier, logger *zap.Logger) *Inventory {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	inv := &Inventory{
		maxSlots: maxSlots,
		catalog:  catalog,
		effects:  effects,
		logger:   logger,
	}
	inv.reset()
	return inv
}

func (inv *Inventory) reset() {
	inv.slots = make([]InventorySlot, inv.maxSlots)
	for i := range inv.slots {
		inv.slots[i].Index = i
	}
	inv.used = 0
}

// MaxSlots returns the fixed capacity.
func (inv *Inventory) MaxSlots() int { return inv.maxSlots }

// GetAvailableSlots returns the number of empty slots.
func (inv *Inventory) GetAvailableSlots() int { return inv.maxSlots - inv.used }

// IsFull reports whether no empty slot remains.
func (inv *Inventory) IsFull() bool { return inv.used >= inv.maxSlots }

// UsedSlots returns the number of occupied slots.
func (inv *Inventory) UsedSlots() int { return inv.used }

// Gold returns the current gold amount.
func (inv *Inventory) Gold() int64 { return inv.gold }

// AddGold increases gold by n (n must be positive).
func (inv *Inventory) AddGold(n int64) bool {
	if n <= 0 {
		return false
	}
	inv.gold += n
	return true
}

// SpendGold decreases gold by n, rejecting overdraw.
func (inv *Inventory) SpendGold(n int64) bool {
	if n <= 0 || n > inv.gold {
		return false
	}
	inv.gold -= n
	return true
}

// CanAdd reports whether qty copies of it would fit: partial stacks of
// the same id are topped up first, then the remainder needs
// ceil(remainder/maxStack) empty slots.
func (inv *Inventory) CanAdd(it Item, qty int) bool {
	if qty <= 0 {
		return false
	}
	remainder := qty
	for i := range inv.slots {
		s := &inv.slots[i]
		if s.Empty() || s.Item.ID != it.ID || s.Quantity >= it.MaxStack {
			continue
		}
		room := it.MaxStack - s.Quantity
		if room > remainder {
			room = remainder
		}
		remainder -= room
		if remainder == 0 {
			return true
		}
	}
	needed := (remainder + it.MaxStack - 1) / it.MaxStack
	return needed <= inv.GetAvailableSlots()
}

// AddItem adds qty copies of it, filling partial stacks left to right
// before spilling into empty slots. All-or-nothing: if the quantity does
// not fit, nothing changes.
func (inv *Inventory) AddItem(it Item, qty int) AddResult {
	if err := it.Validate(); err != nil {
		return AddResult{Message: err.Error()}
	}
	if qty <= 0 {
		return AddResult{Message: "quantity must be positive"}
	}
	if !inv.CanAdd(it, qty) {
		return AddResult{Message: "inventory full", Total: inv.GetItemCount(it.ID)}
	}

	left := qty
	var touched []int

	// Top up existing partial stacks first.
	for i := range inv.slots {
		if left == 0 {
			break
		}
		s := &inv.slots[i]
		if s.Empty() || s.Item.ID != it.ID || s.Quantity >= it.MaxStack {
			continue
		}
		add := it.MaxStack - s.Quantity
		if add > left {
			add = left
		}
		s.Quantity += add
		left -= add
		touched = append(touched, i)
	}

	// Spill the remainder into empty slots.
	for i := range inv.slots {
		if left == 0 {
			break
		}
		s := &inv.slots[i]
		if !s.Empty() {
			continue
		}
		add := it.MaxStack
		if add > left {
			add = left
		}
		copied := it
		s.Item = &copied
		s.Quantity = add
		inv.used++
		left -= add
		touched = append(touched, i)
	}

	total := inv.GetItemCount(it.ID)
	inv.logger.Debug("item added",
		zap.String("item", it.ID),
		zap.Int("qty", qty),
		zap.Ints("slots", touched),
		zap.Int("total", total))
	return AddResult{Success: true, Message: fmt.Sprintf("added %d x %s", qty, it.Name), Slots: touched, Total: total}
}

// RemoveItem removes qty copies of itemID, draining the highest slot
// index first. Rejects if fewer than qty are held; nothing changes on
// rejection.
func (inv *Inventory) RemoveItem(itemID string, qty int) RemoveResult {
	if qty <= 0 {
		return RemoveResult{Message: "quantity must be positive", Remaining: inv.GetItemCount(itemID)}
	}
	held := inv.GetItemCount(itemID)
	if held < qty {
		return RemoveResult{
			Message:   fmt.Sprintf("not enough items: have %d, need %d", held, qty),
			Remaining: held,
		}
	}

	left := qty
	var touched []int
	for i := len(inv.slots) - 1; i >= 0 && left > 0; i-- {
		s := &inv.slots[i]
		if s.Empty() || s.Item.ID != itemID {
			continue
		}
		take := s.Quantity
		if take > left {
			take = left
		}
		s.Quantity -= take
		left -= take
		touched = append(touched, i)
		if s.Quantity == 0 {
			s.Item = nil
			inv.used--
		}
	}

	remaining := inv.GetItemCount(itemID)
	inv.logger.Debug("item removed",
		zap.String("item", itemID),
		zap.Int("qty", qty),
		zap.Ints("slots", touched),
		zap.Int("remaining", remaining))
	return RemoveResult{Success: true, Message: fmt.Sprintf("removed %d x %s", qty, itemID), Slots: touched, Remaining: remaining}
}

// GetItem returns the first slot's item matching itemID, or nil.
func (inv *Inventory) GetItem(itemID string) *Item {
	for i := range inv.slots {
		s := &inv.slots[i]
		if !s.Empty() && s.Item.ID == itemID {
			copied := *s.Item
			return &copied
		}
	}
	return nil
}

// GetAllItems returns a defensive copy of every slot.
func (inv *Inventory) GetAllItems() []InventorySlot {
	out := make([]InventorySlot, len(inv.slots))
	for i := range inv.slots {
		out[i] = inv.slots[i]
		if inv.slots[i].Item != nil {
			copied := *inv.slots[i].Item
			out[i].Item = &copied
		}
	}
	return out
}

// GetItemCount sums the quantities of itemID across all slots.
func (inv *Inventory) GetItemCount(itemID string) int {
	total := 0
	for i := range inv.slots {
		s := &inv.slots[i]
		if !s.Empty() && s.Item.ID == itemID {
			total += s.Quantity
		}
	}
	return total
}

// UseItem consumes one copy of a consumable, applying its catalog
// effects to ch first. If any effect fails the item is not consumed.
// A zero targetID (or nil character) skips effect application.
func (inv *Inventory) UseItem(itemID string, targetID int64, ch *player.Character) UseResult {
	held := inv.GetItem(itemID)
	if held == nil {
		return UseResult{Message: fmt.Sprintf("item %s not in inventory", itemID)}
	}
	if held.Type != TypeConsumable {
		return UseResult{Message: fmt.Sprintf("item %s is not consumable", itemID)}
	}
	def, ok := inv.catalog.Definition(itemID)
	if !ok || def.Consumable == nil {
		return UseResult{Message: fmt.Sprintf("no consumable definition for %s", itemID)}
	}

	var applied []EffectResult
	if inv.effects != nil && targetID != 0 && ch != nil {
		for _, e := range def.Consumable.Effects {
			res := inv.effects.ApplyEffect(e, targetID, ch)
			applied = append(applied, res)
			if !res.Success {
				// Whole use fails; the item is not consumed.
				return UseResult{Message: res.Message, Effects: applied}
			}
		}
	}

	if rm := inv.RemoveItem(itemID, 1); !rm.Success {
		return UseResult{Message: rm.Message, Effects: applied}
	}
	return UseResult{Success: true, Message: fmt.Sprintf("used %s", held.Name), Effects: applied}
}

// SortItems stable-sorts the occupied slots by key with item name as the
// universal tie-break, then lays them back contiguously from slot 0.
// Rarity and quantity sort descending; type and name ascending. Prior
// slot positions are not preserved.
func (inv *Inventory) SortItems(key SortKey) bool {
	if !key.Valid() {
		return false
	}

	type stack struct {
		item *Item
		qty  int
	}
	var stacks []stack
	for i := range inv.slots {
		if !inv.slots[i].Empty() {
			stacks = append(stacks, stack{item: inv.slots[i].Item, qty: inv.slots[i].Quantity})
		}
	}

	sort.SliceStable(stacks, func(a, b int) bool {
		ia, ib := stacks[a].item, stacks[b].item
		switch key {
		case SortByType:
			if ia.Type != ib.Type {
				return ia.Type < ib.Type
			}
		case SortByRarity:
			if ia.Rarity.Rank() != ib.Rarity.Rank() {
				return ia.Rarity.Rank() > ib.Rarity.Rank()
			}
		case SortByQuantity:
			if stacks[a].qty != stacks[b].qty {
				return stacks[a].qty > stacks[b].qty
			}
		}
		return ia.Name < ib.Name
	})

	inv.reset()
	for i, st := range stacks {
		inv.slots[i].Item = st.item
		inv.slots[i].Quantity = st.qty
		inv.used++
	}
	inv.logger.Debug("inventory sorted", zap.String("key", string(key)), zap.Int("stacks", len(stacks)))
	return true
}

// Clear resets to a fresh inventory of the same capacity: all slots
// empty, gold zero.
func (inv *Inventory) Clear() {
	inv.reset()
	inv.gold = 0
}
