package item

import (
	"errors"
	"fmt"
)

// Type classifies an item in the catalog.
type Type string

const (
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
	TypeAccessory  Type = "accessory"
	TypeConsumable Type = "consumable"
	TypeMaterial   Type = "material"
	TypeKey        Type = "key"
)

// Valid reports whether t is a known item type.
func (t Type) Valid() bool {
	switch t {
	case TypeWeapon, TypeArmor, TypeAccessory, TypeConsumable, TypeMaterial, TypeKey:
		return true
	}
	return false
}

// Equippable reports whether items of this type can be placed in an
// equipment slot.
func (t Type) Equippable() bool {
	return t == TypeWeapon || t == TypeArmor || t == TypeAccessory
}

// Rarity grades an item. Rank() gives the sort order (legendary highest).
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rank returns the numeric grade of the rarity, 0 for common up to 4
// for legendary. Unknown rarities rank below common.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return -1
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

// Slot names one of the four equipment positions.
type Slot string

const (
	SlotWeapon     Slot = "weapon"
	SlotArmor      Slot = "armor"
	SlotAccessory1 Slot = "accessory1"
	SlotAccessory2 Slot = "accessory2"
)

// Slots lists the equipment slots in display order.
var Slots = []Slot{SlotWeapon, SlotArmor, SlotAccessory1, SlotAccessory2}

// Valid reports whether s is a known equipment slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotWeapon, SlotArmor, SlotAccessory1, SlotAccessory2:
		return true
	}
	return false
}

// EffectType classifies what an ItemEffect does to its target.
type EffectType string

const (
	EffectStatBoost     EffectType = "stat_boost"
	EffectStatReduction EffectType = "stat_reduction"
	EffectHPRecovery    EffectType = "hp_recovery"
	EffectMPRecovery    EffectType = "mp_recovery"
	EffectStatusCure    EffectType = "status_cure"
	EffectStatusInflict EffectType = "status_inflict"
	EffectDamage        EffectType = "damage"
	EffectShield        EffectType = "shield"
)

// Valid reports whether t is a known effect type.
func (t EffectType) Valid() bool {
	switch t {
	case EffectStatBoost, EffectStatReduction, EffectHPRecovery, EffectMPRecovery,
		EffectStatusCure, EffectStatusInflict, EffectDamage, EffectShield:
		return true
	}
	return false
}

// Item is the base catalog value for anything that can occupy an
// inventory slot. Immutable once issued into a slot; only the slot's
// quantity changes.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Rarity      Rarity `json:"rarity"`
	IconPath    string `json:"iconPath"`
	MaxStack    int    `json:"maxStack"`
	SellPrice   int    `json:"sellPrice"`
	BuyPrice    int    `json:"buyPrice"`
}

// Validate checks the structural invariants an item must hold before it
// may enter an inventory.
func (it Item) Validate() error {
	if it.ID == "" {
		return errors.New("item: missing id")
	}
	if it.Name == "" {
		return fmt.Errorf("item %s: missing name", it.ID)
	}
	if !it.Type.Valid() {
		return fmt.Errorf("item %s: invalid type %q", it.ID, it.Type)
	}
	if it.MaxStack < 1 {
		return fmt.Errorf("item %s: maxStack %d < 1", it.ID, it.MaxStack)
	}
	if it.SellPrice < 0 || it.BuyPrice < 0 {
		return fmt.Errorf("item %s: negative price", it.ID)
	}
	return nil
}

// EquipmentStats holds the sparse stat deltas an equipment piece grants.
// HP and MP address the maximum pools.
type EquipmentStats struct {
	HP       int `json:"hp,omitempty"`
	MP       int `json:"mp,omitempty"`
	Attack   int `json:"attack,omitempty"`
	Defense  int `json:"defense,omitempty"`
	Speed    int `json:"speed,omitempty"`
	Accuracy int `json:"accuracy,omitempty"`
	Evasion  int `json:"evasion,omitempty"`
}

// Add accumulates other into s.
func (s *EquipmentStats) Add(other EquipmentStats) {
	s.HP += other.HP
	s.MP += other.MP
	s.Attack += other.Attack
	s.Defense += other.Defense
	s.Speed += other.Speed
	s.Accuracy += other.Accuracy
	s.Evasion += other.Evasion
}

// Requirements gates whether a character may equip an item. Zero values
// mean "no requirement".
type Requirements struct {
	Level   int    `json:"level,omitempty"`
	Job     string `json:"job,omitempty"`
	Attack  int    `json:"attack,omitempty"`
	Defense int    `json:"defense,omitempty"`
	Speed   int    `json:"speed,omitempty"`
}

// Equipment is an item that can occupy an equipment slot.
type Equipment struct {
	Item
	Slot          Slot           `json:"slot"`
	Stats         EquipmentStats `json:"stats"`
	Requirements  Requirements   `json:"requirements"`
	Durability    int            `json:"durability"`
	MaxDurability int            `json:"maxDurability"`
	Effects       []ItemEffect   `json:"effects"`
}

// Validate checks the structural invariants of an equipment piece.
func (eq Equipment) Validate() error {
	if err := eq.Item.Validate(); err != nil {
		return err
	}
	if !eq.Type.Equippable() {
		return fmt.Errorf("item %s: type %q is not equippable", eq.ID, eq.Type)
	}
	if !eq.Slot.Valid() {
		return fmt.Errorf("item %s: invalid equipment slot %q", eq.ID, eq.Slot)
	}
	if eq.MaxDurability <= 0 {
		return fmt.Errorf("item %s: maxDurability %d <= 0", eq.ID, eq.MaxDurability)
	}
	if eq.Durability > eq.MaxDurability {
		return fmt.Errorf("item %s: durability %d exceeds max %d", eq.ID, eq.Durability, eq.MaxDurability)
	}
	return nil
}

// Consumable is an item that is spent on use, applying its effects to a
// target character.
type Consumable struct {
	Item
	ConsumableType string       `json:"consumableType"`
	Effects        []ItemEffect `json:"effects"`
	UsableInBattle bool         `json:"usableInBattle"`
	TargetType     string       `json:"targetType"`
}

// ItemEffect describes one stat or status mutation an item applies to a
// character. Duration 0 means the effect is applied once and never
// tracked; duration > 0 with IsPermanent false makes it a timed effect
// expiring after that many turns.
type ItemEffect struct {
	ID          string     `json:"id"`
	Type        EffectType `json:"type"`
	Target      string     `json:"target"`
	Value       float64    `json:"value"`
	Duration    int        `json:"duration"`
	IsPermanent bool       `json:"isPermanent"`
	Stackable   bool       `json:"stackable"`
}

// Definition bundles the base item with its optional equipment and
// consumable facets, as supplied by the catalog.
type Definition struct {
	Base       Item        `json:"base"`
	Equipment  *Equipment  `json:"equipment,omitempty"`
	Consumable *Consumable `json:"consumable,omitempty"`
}

// Catalog resolves item ids to full definitions. Implemented by the
// resource loader; consumers only need lookup.
type Catalog interface {
	Definition(id string) (*Definition, bool)
}
