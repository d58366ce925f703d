package item

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SaveVersion tags every serialized snapshot. Snapshots store only item
// ids and quantities; full payloads are re-resolved through the catalog
// on load.
const SaveVersion = "1.0.0"

type slotSnapshot struct {
	Slot     int    `json:"slot"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type inventorySnapshot struct {
	Version  string         `json:"version"`
	SavedAt  int64          `json:"savedAt"`
	Gold     int64          `json:"gold"`
	MaxSlots int            `json:"maxSlots"`
	Slots    []slotSnapshot `json:"slots"`
}

// Serialize renders the inventory as a versioned JSON snapshot.
func (inv *Inventory) Serialize() (string, error) {
	snap := inventorySnapshot{
		Version:  SaveVersion,
		SavedAt:  time.Now().Unix(),
		Gold:     inv.gold,
		MaxSlots: inv.maxSlots,
	}
	for i := range inv.slots {
		s := &inv.slots[i]
		if s.Empty() {
			continue
		}
		snap.Slots = append(snap.Slots, slotSnapshot{Slot: i, ItemID: s.Item.ID, Quantity: s.Quantity})
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("serialize inventory: %w", err)
	}
	return string(data), nil
}

// Deserialize replaces the inventory contents from a snapshot. Malformed
// JSON is an error; a missing version tag is tolerated with a warning,
// as are unknown item ids (their slots are skipped, not restored).
func (inv *Inventory) Deserialize(data string) error {
	var snap inventorySnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return fmt.Errorf("deserialize inventory: %w", err)
	}
	if snap.Version == "" {
		inv.logger.Warn("inventory snapshot has no version tag, loading anyway")
	}

	inv.reset()
	inv.gold = snap.Gold
	if inv.gold < 0 {
		inv.gold = 0
	}
	for _, ss := range snap.Slots {
		if ss.Slot < 0 || ss.Slot >= inv.maxSlots || ss.Quantity <= 0 {
			inv.logger.Warn("skipping invalid inventory snapshot slot",
				zap.Int("slot", ss.Slot), zap.Int("quantity", ss.Quantity))
			continue
		}
		def, ok := inv.catalog.Definition(ss.ItemID)
		if !ok {
			inv.logger.Warn("skipping unknown item id in inventory snapshot",
				zap.String("item", ss.ItemID))
			continue
		}
		if inv.slots[ss.Slot].Item != nil {
			inv.logger.Warn("duplicate slot in inventory snapshot",
				zap.Int("slot", ss.Slot))
			continue
		}
		qty := ss.Quantity
		if qty > def.Base.MaxStack {
			qty = def.Base.MaxStack
		}
		copied := def.Base
		inv.slots[ss.Slot].Item = &copied
		inv.slots[ss.Slot].Quantity = qty
		inv.used++
	}
	return nil
}

type characterEquipmentSnapshot struct {
	CharacterID int64           `json:"characterId"`
	Slots       map[Slot]string `json:"slots"`
}

type equipmentSnapshot struct {
	Version    string                       `json:"version"`
	SavedAt    int64                        `json:"savedAt"`
	Characters []characterEquipmentSnapshot `json:"characters"`
}

// Serialize renders every character's equipment set as a versioned JSON
// snapshot of slot → item id.
func (em *EquipmentManager) Serialize() (string, error) {
	snap := equipmentSnapshot{Version: SaveVersion, SavedAt: time.Now().Unix()}
	for charID, ce := range em.chars {
		entry := characterEquipmentSnapshot{CharacterID: charID, Slots: make(map[Slot]string)}
		for _, slot := range Slots {
			if eq := ce.Set.Get(slot); eq != nil {
				entry.Slots[slot] = eq.ID
			}
		}
		if len(entry.Slots) > 0 {
			snap.Characters = append(snap.Characters, entry)
		}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("serialize equipment: %w", err)
	}
	return string(data), nil
}

// Deserialize rebuilds the equipment sets from a snapshot, re-hydrating
// each equipment instance through the catalog. Stat deltas are not
// re-applied here: the saved character record already carries them.
func (em *EquipmentManager) Deserialize(data string, catalog Catalog) error {
	var snap equipmentSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return fmt.Errorf("deserialize equipment: %w", err)
	}
	if snap.Version == "" {
		em.logger.Warn("equipment snapshot has no version tag, loading anyway")
	}

	em.chars = make(map[int64]*CharacterEquipment)
	for _, entry := range snap.Characters {
		ce := &CharacterEquipment{CharacterID: entry.CharacterID}
		for slot, itemID := range entry.Slots {
			if !slot.Valid() {
				em.logger.Warn("skipping unknown slot in equipment snapshot",
					zap.String("slot", string(slot)))
				continue
			}
			def, ok := catalog.Definition(itemID)
			if !ok || def.Equipment == nil {
				em.logger.Warn("skipping unknown equipment id in snapshot",
					zap.String("item", itemID))
				continue
			}
			copied := *def.Equipment
			ce.Set.Set(slot, &copied)
		}
		em.recomputeApplied(ce)
		em.chars[entry.CharacterID] = ce
	}
	return nil
}
