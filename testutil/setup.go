package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/cache"
	"github.com/aoisora/srpg-server/config"
	dbadapter "github.com/aoisora/srpg-server/db"
	"github.com/aoisora/srpg-server/model"
	"github.com/aoisora/srpg-server/resource"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate. Each
// call gets its own database, so parallel tests never share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: dsn,
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates an in-process LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{})
	require.NoError(t, err, "SetupTestCache: New")
	return c
}

// TestLogger returns a development zap logger for tests.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := zap.NewDevelopment()
	require.NoError(t, err)
	return l
}

// FixtureItems is a small raw catalog covering every item type the
// handlers and managers touch in tests.
func FixtureItems() []map[string]any {
	return []map[string]any{
		{
			"id": "potion", "name": "Potion", "type": "consumable",
			"description": "Restores 50 HP.", "rarity": "common",
			"iconPath": "icons/potion.png", "maxStack": float64(99),
			"buyPrice": float64(50), "sellPrice": float64(25),
			"consumableType": "healing", "usableInBattle": true, "targetType": "single",
			"effects": []any{
				map[string]any{"id": "potion_heal", "type": "hp_recovery", "target": "self", "value": float64(50), "isPermanent": true},
			},
		},
		{
			"id": "ether", "name": "Ether", "type": "consumable",
			"description": "Restores 30 MP.", "rarity": "uncommon",
			"iconPath": "icons/ether.png", "maxStack": float64(50),
			"buyPrice": float64(120), "sellPrice": float64(60),
			"consumableType": "healing", "usableInBattle": true, "targetType": "single",
			"effects": []any{
				map[string]any{"id": "ether_mp", "type": "mp_recovery", "target": "self", "value": float64(30), "isPermanent": true},
			},
		},
		{
			"id": "strength_tonic", "name": "Strength Tonic", "type": "consumable",
			"description": "Raises attack for a few turns.", "rarity": "rare",
			"iconPath": "icons/tonic.png", "maxStack": float64(20),
			"buyPrice": float64(300), "sellPrice": float64(150),
			"consumableType": "buff", "usableInBattle": true, "targetType": "single",
			"effects": []any{
				map[string]any{"id": "tonic_attack", "type": "stat_boost", "target": "attack", "value": float64(5), "duration": float64(3)},
			},
		},
		{
			"id": "iron_sword", "name": "Iron Sword", "type": "weapon",
			"description": "A plain, reliable sword.", "rarity": "common",
			"iconPath": "icons/iron_sword.png", "maxStack": float64(1),
			"buyPrice": float64(200), "sellPrice": float64(100),
			"slot":       "weapon",
			"stats":      map[string]any{"attack": float64(10)},
			"durability": float64(100), "maxDurability": float64(100),
			"requirements": map[string]any{"level": float64(1)},
			"effects":      []any{},
		},
		{
			"id": "steel_sword", "name": "Steel Sword", "type": "weapon",
			"description": "Heavier and sharper than iron.", "rarity": "uncommon",
			"iconPath": "icons/steel_sword.png", "maxStack": float64(1),
			"buyPrice": float64(800), "sellPrice": float64(400),
			"slot":       "weapon",
			"stats":      map[string]any{"attack": float64(18), "speed": float64(-1)},
			"durability": float64(120), "maxDurability": float64(120),
			"requirements": map[string]any{"level": float64(5)},
			"effects":      []any{},
		},
		{
			"id": "leather_armor", "name": "Leather Armor", "type": "armor",
			"description": "Light armor sewn from cured hide.", "rarity": "common",
			"iconPath": "icons/leather_armor.png", "maxStack": float64(1),
			"buyPrice": float64(150), "sellPrice": float64(75),
			"slot":       "armor",
			"stats":      map[string]any{"defense": float64(5), "hp": float64(10)},
			"durability": float64(80), "maxDurability": float64(80),
			"requirements": map[string]any{"level": float64(1)},
			"effects":      []any{},
		},
		{
			"id": "power_ring", "name": "Power Ring", "type": "accessory",
			"description": "A ring that hums with stored strength.", "rarity": "rare",
			"iconPath": "icons/power_ring.png", "maxStack": float64(1),
			"buyPrice": float64(1000), "sellPrice": float64(500),
			"slot":       "accessory1",
			"stats":      map[string]any{"attack": float64(2), "accuracy": float64(3)},
			"durability": float64(50), "maxDurability": float64(50),
			"requirements": map[string]any{"level": float64(1)},
			"effects":      []any{},
		},
		{
			"id": "iron_ore", "name": "Iron Ore", "type": "material",
			"description": "Raw ore for smithing.", "rarity": "common",
			"iconPath": "icons/iron_ore.png", "maxStack": float64(99),
			"buyPrice": float64(10), "sellPrice": float64(5),
		},
	}
}

// SetupTestCatalog builds a Catalog from FixtureItems.
func SetupTestCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	c := resource.NewCatalog("", TestLogger(t))
	require.NoError(t, c.LoadRaw(FixtureItems()))
	return c
}
