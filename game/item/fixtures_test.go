package item

import (
	"go.uber.org/zap"

	"github.com/aoisora/srpg-server/game/player"
)

// stubCatalog is a map-backed Catalog for tests.
type stubCatalog map[string]*Definition

func (c stubCatalog) Definition(id string) (*Definition, bool) {
	def, ok := c[id]
	return def, ok
}

func testLogger() *zap.Logger {
	l, _ := zap.NewDevelopment()
	return l
}

func testCharacter() *player.Character {
	return &player.Character{
		ID: 1, Name: "Hero", Job: "warrior", Level: 5,
		Stats: player.Stats{Attack: 10, Defense: 5, Speed: 10, Accuracy: 95, Evasion: 5},
		HP:    100, MaxHP: 100, MP: 50, MaxMP: 50,
	}
}

func potionItem() Item {
	return Item{
		ID: "potion", Name: "Potion", Description: "Restores 50 HP.",
		Type: TypeConsumable, Rarity: RarityCommon, IconPath: "icons/potion.png",
		MaxStack: 99, SellPrice: 25, BuyPrice: 50,
	}
}

func potionDefinition() *Definition {
	base := potionItem()
	return &Definition{
		Base: base,
		Consumable: &Consumable{
			Item:           base,
			ConsumableType: "healing",
			UsableInBattle: true,
			TargetType:     "single",
			Effects: []ItemEffect{
				{ID: "potion_heal", Type: EffectHPRecovery, Target: "self", Value: 50, IsPermanent: true},
			},
		},
	}
}

func oreItem() Item {
	return Item{
		ID: "iron_ore", Name: "Iron Ore", Description: "Raw ore.",
		Type: TypeMaterial, Rarity: RarityCommon, IconPath: "icons/ore.png",
		MaxStack: 99, SellPrice: 5, BuyPrice: 10,
	}
}

func swordEquipment() *Equipment {
	base := Item{
		ID: "iron_sword", Name: "Iron Sword", Description: "A plain sword.",
		Type: TypeWeapon, Rarity: RarityCommon, IconPath: "icons/sword.png",
		MaxStack: 1, SellPrice: 100, BuyPrice: 200,
	}
	return &Equipment{
		Item:          base,
		Slot:          SlotWeapon,
		Stats:         EquipmentStats{Attack: 10},
		Requirements:  Requirements{Level: 1},
		Durability:    100,
		MaxDurability: 100,
	}
}

func armorEquipment() *Equipment {
	base := Item{
		ID: "leather_armor", Name: "Leather Armor", Description: "Light armor.",
		Type: TypeArmor, Rarity: RarityCommon, IconPath: "icons/armor.png",
		MaxStack: 1, SellPrice: 75, BuyPrice: 150,
	}
	return &Equipment{
		Item:          base,
		Slot:          SlotArmor,
		Stats:         EquipmentStats{Defense: 5, HP: 10},
		Requirements:  Requirements{Level: 1},
		Durability:    80,
		MaxDurability: 80,
	}
}

func testCatalog() stubCatalog {
	sword := swordEquipment()
	armor := armorEquipment()
	ore := oreItem()
	return stubCatalog{
		"potion":        potionDefinition(),
		"iron_sword":    {Base: sword.Item, Equipment: sword},
		"leather_armor": {Base: armor.Item, Equipment: armor},
		"iron_ore":      {Base: ore},
	}
}

// newTestInventory wires an inventory with the stub catalog and a real
// effect system, the same shape the session layer builds.
func newTestInventory(maxSlots int) (*Inventory, *EffectSystem) {
	es := NewEffectSystem(testLogger())
	inv := NewInventory(maxSlots, testCatalog(), es, testLogger())
	return inv, es
}
