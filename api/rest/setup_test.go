package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/api/rest"
	"github.com/aoisora/srpg-server/config"
	"github.com/aoisora/srpg-server/game/session"
	mw "github.com/aoisora/srpg-server/middleware"
	"github.com/aoisora/srpg-server/resource"
	"github.com/aoisora/srpg-server/testutil"
)

// testServer wires the full REST surface the way main.go does, backed
// by an in-memory DB, a local cache and the fixture catalog.
type testServer struct {
	r        *gin.Engine
	db       *gorm.DB
	catalog  *resource.Catalog
	sessions *session.Manager
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	catalog := testutil.SetupTestCatalog(t)
	logger := testutil.TestLogger(t)

	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}
	game := config.GameConfig{InventorySlots: 100, StartingGold: 1000, StartingHP: 100, StartingMP: 50}
	sessions := session.NewManager(db, c, catalog, game, logger)

	authH := rest.NewAuthHandler(db, c, sec)
	charH := rest.NewCharacterHandler(db, sessions, game)
	invH := rest.NewInventoryHandler(db, sessions, catalog, nil)
	eqH := rest.NewEquipmentHandler(db, sessions, catalog, nil)
	saveH := rest.NewSaveHandler(db, c, sessions)
	turnH := rest.NewTurnHandler(db, sessions)
	itemH := rest.NewItemHandler(catalog)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", authH.Login)

	itemsG := api.Group("/items")
	itemsG.GET("", itemH.List)
	itemsG.GET("/:item_id", itemH.Get)

	charsG := api.Group("/characters")
	charsG.Use(mw.Auth(sec, c))
	charsG.GET("", charH.List)
	charsG.POST("", charH.Create)
	charsG.GET("/:id", charH.Get)
	charsG.DELETE("/:id", charH.Delete)
	charsG.GET("/:id/inventory", invH.List)
	charsG.POST("/:id/inventory/items", invH.AddItem)
	charsG.DELETE("/:id/inventory/items", invH.RemoveItem)
	charsG.POST("/:id/inventory/use", invH.UseItem)
	charsG.POST("/:id/inventory/sort", invH.Sort)
	charsG.POST("/:id/inventory/gold", invH.AdjustGold)
	charsG.GET("/:id/equipment", eqH.Get)
	charsG.POST("/:id/equipment/equip", eqH.Equip)
	charsG.POST("/:id/equipment/unequip", eqH.Unequip)
	charsG.GET("/:id/equipment/requirements", eqH.Requirements)
	charsG.POST("/:id/save", saveH.Save)
	charsG.GET("/:id/save", saveH.Get)
	charsG.POST("/:id/turn", turnH.Advance)
	charsG.GET("/:id/effects", turnH.Effects)

	ts := &testServer{r: r, db: db, catalog: catalog, sessions: sessions}

	// Log in once; every request in the test reuses the token.
	w := postJSON(r, "/api/auth/login", map[string]string{"username": "tester", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ts.token = resp["token"].(string)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.token)
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func (ts *testServer) createCharacter(t *testing.T, name, job string) int64 {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/characters", map[string]string{"name": name, "job": job})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var char struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &char))
	return char.ID
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
