package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventorySerialize_RoundTrip(t *testing.T) {
	inv, _ := newTestInventory(20)
	require.True(t, inv.AddItem(potionItem(), 150).Success) // slots 0 and 1
	require.True(t, inv.AddItem(oreItem(), 10).Success)     // slot 2
	require.True(t, inv.RemoveItem("potion", 150).Success)  // leaves a gap before the ore
	inv.AddGold(777)

	data, err := inv.Serialize()
	require.NoError(t, err)

	restored, _ := newTestInventory(20)
	require.NoError(t, restored.Deserialize(data))

	assert.Equal(t, int64(777), restored.Gold())
	assert.Equal(t, 1, restored.UsedSlots())
	slots := restored.GetAllItems()
	assert.Nil(t, slots[0].Item, "slot positions survive the round trip")
	require.NotNil(t, slots[2].Item)
	assert.Equal(t, "iron_ore", slots[2].Item.ID)
	assert.Equal(t, 10, slots[2].Quantity)
}

func TestInventorySerialize_VersionTag(t *testing.T) {
	inv, _ := newTestInventory(10)
	data, err := inv.Serialize()
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Equal(t, SaveVersion, snap["version"])
	assert.NotZero(t, snap["savedAt"])
}

func TestInventoryDeserialize_MalformedJSON(t *testing.T) {
	inv, _ := newTestInventory(10)
	require.True(t, inv.AddItem(potionItem(), 3).Success)

	err := inv.Deserialize("{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deserialize inventory")
	// The failed load must not have touched the live contents.
	assert.Equal(t, 3, inv.GetItemCount("potion"))
}

func TestInventoryDeserialize_MissingVersionStillLoads(t *testing.T) {
	inv, _ := newTestInventory(10)
	data := `{"gold":50,"maxSlots":10,"slots":[{"slot":0,"itemId":"potion","quantity":5}]}`

	require.NoError(t, inv.Deserialize(data))
	assert.Equal(t, int64(50), inv.Gold())
	assert.Equal(t, 5, inv.GetItemCount("potion"))
}

func TestInventoryDeserialize_SkipsBadSlots(t *testing.T) {
	inv, _ := newTestInventory(10)
	data := `{"version":"1.0.0","gold":0,"maxSlots":10,"slots":[
		{"slot":-1,"itemId":"potion","quantity":1},
		{"slot":10,"itemId":"potion","quantity":1},
		{"slot":0,"itemId":"potion","quantity":0},
		{"slot":1,"itemId":"excalibur","quantity":1},
		{"slot":2,"itemId":"potion","quantity":4},
		{"slot":2,"itemId":"iron_ore","quantity":9}
	]}`

	require.NoError(t, inv.Deserialize(data))
	assert.Equal(t, 1, inv.UsedSlots())
	slots := inv.GetAllItems()
	require.NotNil(t, slots[2].Item)
	assert.Equal(t, "potion", slots[2].Item.ID, "first occupant of a duplicated slot wins")
	assert.Equal(t, 4, slots[2].Quantity)
}

func TestInventoryDeserialize_CapsAtMaxStack(t *testing.T) {
	inv, _ := newTestInventory(10)
	data := `{"version":"1.0.0","gold":0,"maxSlots":10,"slots":[{"slot":0,"itemId":"potion","quantity":500}]}`

	require.NoError(t, inv.Deserialize(data))
	assert.Equal(t, 99, inv.GetItemCount("potion"))
}

func TestInventoryDeserialize_NegativeGoldFloored(t *testing.T) {
	inv, _ := newTestInventory(10)
	data := `{"version":"1.0.0","gold":-200,"maxSlots":10,"slots":[]}`

	require.NoError(t, inv.Deserialize(data))
	assert.Equal(t, int64(0), inv.Gold())
}

func TestEquipmentSerialize_RoundTrip(t *testing.T) {
	em, inv := newTestEquipment(10)
	ch := testCharacter()
	sword := swordEquipment()
	armor := armorEquipment()
	require.True(t, inv.AddItem(sword.Item, 1).Success)
	require.True(t, inv.AddItem(armor.Item, 1).Success)
	require.True(t, em.EquipItem(ch.ID, sword, SlotWeapon, ch).Success)
	require.True(t, em.EquipItem(ch.ID, armor, SlotArmor, ch).Success)

	data, err := em.Serialize()
	require.NoError(t, err)

	restored, _ := newTestEquipment(10)
	require.NoError(t, restored.Deserialize(data, testCatalog()))

	weapon := restored.GetEquipment(ch.ID, SlotWeapon)
	require.NotNil(t, weapon)
	assert.Equal(t, "iron_sword", weapon.ID)
	require.NotNil(t, restored.GetEquipment(ch.ID, SlotArmor))
	assert.Nil(t, restored.GetEquipment(ch.ID, SlotAccessory1))

	// Applied totals are recomputed from the restored sets.
	assert.Equal(t, EquipmentStats{Attack: 10, Defense: 5, HP: 10}, restored.AppliedStats(ch.ID))
}

func TestEquipmentDeserialize_MalformedJSON(t *testing.T) {
	em, _ := newTestEquipment(10)
	err := em.Deserialize("[", testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deserialize equipment")
}

func TestEquipmentDeserialize_SkipsUnknownEntries(t *testing.T) {
	em, _ := newTestEquipment(10)
	data := `{"version":"1.0.0","characters":[
		{"characterId":1,"slots":{"weapon":"excalibur","armor":"leather_armor","hat":"iron_sword"}}
	]}`

	require.NoError(t, em.Deserialize(data, testCatalog()))
	assert.Nil(t, em.GetEquipment(1, SlotWeapon), "unknown item id is skipped")
	require.NotNil(t, em.GetEquipment(1, SlotArmor))
	assert.Equal(t, EquipmentStats{Defense: 5, HP: 10}, em.AppliedStats(1))
}

func TestEquipmentDeserialize_NonEquippableID(t *testing.T) {
	em, _ := newTestEquipment(10)
	data := `{"version":"1.0.0","characters":[{"characterId":1,"slots":{"weapon":"potion"}}]}`

	require.NoError(t, em.Deserialize(data, testCatalog()))
	assert.Nil(t, em.GetEquipment(1, SlotWeapon))
}

func TestEquipmentDeserialize_MissingVersionStillLoads(t *testing.T) {
	em, _ := newTestEquipment(10)
	data := `{"characters":[{"characterId":7,"slots":{"weapon":"iron_sword"}}]}`

	require.NoError(t, em.Deserialize(data, testCatalog()))
	require.NotNil(t, em.GetEquipment(7, SlotWeapon))
}
