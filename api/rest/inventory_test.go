package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoisora/srpg-server/model"
)

func (ts *testServer) invPath(charID int64, suffix string) string {
	return fmt.Sprintf("/api/characters/%d/inventory%s", charID, suffix)
}

func TestInventoryAdd_StacksAcrossSlots(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Packrat", "warrior")

	// Potions stack to 99: 150 potions occupy two slots.
	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 150})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w2 := ts.do(t, http.MethodGet, ts.invPath(charID, ""), nil)
	require.Equal(t, http.StatusOK, w2.Code)
	body := decodeBody(t, w2)
	assert.EqualValues(t, 2, body["used_slots"])
	assert.EqualValues(t, 1000, body["gold"])
}

func TestInventoryAdd_UnknownItem(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Lost", "warrior")

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "excalibur", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryRemove(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Spender", "warrior")

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 10})

	w := ts.do(t, http.MethodDelete, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 6, body["remaining"])
}

func TestInventoryRemove_NotEnough(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Short", "warrior")

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 2})

	w := ts.do(t, http.MethodDelete, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInventoryUse_HealsCharacter(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Wounded", "warrior")

	// Damage the stored row before the session first loads.
	require.NoError(t, ts.db.Model(&model.Character{}).Where("id = ?", charID).Update("hp", 40).Error)

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 2})

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/use"),
		map[string]interface{}{"item_id": "potion"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	char := body["character"].(map[string]interface{})
	assert.EqualValues(t, 90, char["hp"])

	// One potion consumed.
	w2 := ts.do(t, http.MethodGet, ts.invPath(charID, ""), nil)
	body2 := decodeBody(t, w2)
	items := body2["items"].([]interface{})
	require.Len(t, items, 1)
	slot := items[0].(map[string]interface{})
	assert.EqualValues(t, 1, slot["quantity"])
}

func TestInventoryUse_OwnCharAsTargetAccepted(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Explicit", "warrior")

	require.NoError(t, ts.db.Model(&model.Character{}).Where("id = ?", charID).Update("hp", 40).Error)

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 1})

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/use"),
		map[string]interface{}{"item_id": "potion", "target_id": charID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	char := decodeBody(t, w)["character"].(map[string]interface{})
	assert.EqualValues(t, 90, char["hp"])
}

func TestInventoryUse_ForeignTargetRejected(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Medic", "warrior")

	require.NoError(t, ts.db.Model(&model.Character{}).Where("id = ?", charID).Update("hp", 40).Error)

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 1})

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/use"),
		map[string]interface{}{"item_id": "potion", "target_id": charID + 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was consumed and nothing was healed.
	w2 := ts.do(t, http.MethodGet, ts.invPath(charID, ""), nil)
	body := decodeBody(t, w2)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, items[0].(map[string]interface{})["quantity"])
}

func TestInventoryUse_NotConsumable(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Chewer", "warrior")

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "iron_sword", "quantity": 1})

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/use"),
		map[string]interface{}{"item_id": "iron_sword"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInventorySort(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Tidy", "warrior")

	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "potion", "quantity": 5})
	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "iron_ore", "quantity": 3})
	ts.do(t, http.MethodPost, ts.invPath(charID, "/items"),
		map[string]interface{}{"item_id": "ether", "quantity": 1})

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/sort"), map[string]string{"key": "name"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	items := body["items"].([]interface{})
	require.Len(t, items, 3)
	first := items[0].(map[string]interface{})["item"].(map[string]interface{})
	assert.Equal(t, "Ether", first["name"])
}

func TestInventorySort_InvalidKey(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Messy", "warrior")

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/sort"), map[string]string{"key": "weight"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryGold(t *testing.T) {
	ts := newTestServer(t)
	charID := ts.createCharacter(t, "Merchant", "warrior")

	w := ts.do(t, http.MethodPost, ts.invPath(charID, "/gold"), map[string]int64{"amount": 250})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1250, decodeBody(t, w)["gold"])

	w2 := ts.do(t, http.MethodPost, ts.invPath(charID, "/gold"), map[string]int64{"amount": -2000})
	assert.Equal(t, http.StatusConflict, w2.Code)
}
