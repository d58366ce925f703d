package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoisora/srpg-server/cache"
	"github.com/aoisora/srpg-server/config"
	"github.com/aoisora/srpg-server/game/item"
	"github.com/aoisora/srpg-server/game/player"
	"github.com/aoisora/srpg-server/model"
	"github.com/aoisora/srpg-server/resource"
)

// saveMirrorTTL bounds how long a cache-mirrored snapshot outlives its
// last write. The DB row is authoritative; the mirror only serves reads
// of the latest save without a DB round trip.
const saveMirrorTTL = 24 * time.Hour

// Manager loads character sessions from the database, keeps them in
// memory while play is active, and writes versioned snapshots back.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	db      *gorm.DB
	cache   cache.Cache
	catalog *resource.Catalog
	cfg     config.GameConfig
	logger  *zap.Logger
}

// NewManager creates a session Manager.
func NewManager(db *gorm.DB, c cache.Cache, catalog *resource.Catalog, cfg config.GameConfig, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		db:       db,
		cache:    c,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger,
	}
}

// Get returns the in-memory session for a character, if loaded.
func (m *Manager) Get(charID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[charID]
	return s, ok
}

// Load returns the character's session, hydrating it from the save row
// on first access. A malformed save snapshot fails the load outright; a
// character without a save row starts with a fresh inventory and the
// configured starting gold.
func (m *Manager) Load(ctx context.Context, charID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[charID]; ok {
		return s, nil
	}

	var row model.Character
	if err := m.db.WithContext(ctx).First(&row, charID).Error; err != nil {
		return nil, fmt.Errorf("session: load character %d: %w", charID, err)
	}

	ch := player.FromModel(&row)
	effects := item.NewEffectSystem(m.logger)
	slots := m.cfg.InventorySlots
	if slots <= 0 {
		slots = item.DefaultMaxSlots
	}
	inv := item.NewInventory(slots, m.catalog, effects, m.logger)
	em := item.NewEquipmentManager(inv, effects, m.logger)

	var save model.SaveGame
	err := m.db.WithContext(ctx).Where("char_id = ?", charID).First(&save).Error
	switch {
	case err == nil:
		if err := inv.Deserialize(string(save.Inventory)); err != nil {
			return nil, fmt.Errorf("session: inventory snapshot for character %d: %w", charID, err)
		}
		if err := em.Deserialize(string(save.Equipment), m.catalog); err != nil {
			return nil, fmt.Errorf("session: equipment snapshot for character %d: %w", charID, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		inv.AddGold(m.cfg.StartingGold)
	default:
		return nil, fmt.Errorf("session: load save for character %d: %w", charID, err)
	}

	s := &Session{
		CharID:    charID,
		AccountID: row.AccountID,
		character: ch,
		inventory: inv,
		equipment: em,
		effects:   effects,
		logger:    m.logger,
	}
	m.sessions[charID] = s
	m.logger.Info("session loaded", zap.Int64("char_id", charID))
	return s, nil
}

// Save snapshots the session's inventory and equipment, upserts the
// SaveGame row, writes the character record back, and mirrors the
// snapshots to the cache.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	invJSON, eqJSON, ch, err := s.snapshot()
	if err != nil {
		return fmt.Errorf("session: snapshot character %d: %w", s.CharID, err)
	}

	var row model.Character
	if err := m.db.WithContext(ctx).First(&row, s.CharID).Error; err != nil {
		return fmt.Errorf("session: save character %d: %w", s.CharID, err)
	}
	ch.ApplyToModel(&row)
	if err := m.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("session: save character %d: %w", s.CharID, err)
	}

	save := model.SaveGame{
		CharID:    s.CharID,
		Version:   item.SaveVersion,
		Inventory: datatypes.JSON(invJSON),
		Equipment: datatypes.JSON(eqJSON),
	}
	err = m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "char_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "inventory", "equipment", "updated_at"}),
	}).Create(&save).Error
	if err != nil {
		return fmt.Errorf("session: save snapshot for character %d: %w", s.CharID, err)
	}

	m.mirrorToCache(ctx, s.CharID, invJSON, eqJSON)
	m.logger.Info("session saved", zap.Int64("char_id", s.CharID))
	return nil
}

func (m *Manager) mirrorToCache(ctx context.Context, charID int64, invJSON, eqJSON string) {
	key := fmt.Sprintf("save:%d", charID)
	if err := m.cache.HSet(ctx, key, "inventory", invJSON); err != nil {
		m.logger.Warn("save cache mirror failed", zap.Int64("char_id", charID), zap.Error(err))
		return
	}
	if err := m.cache.HSet(ctx, key, "equipment", eqJSON); err != nil {
		m.logger.Warn("save cache mirror failed", zap.Int64("char_id", charID), zap.Error(err))
		return
	}
	if err := m.cache.Expire(ctx, key, saveMirrorTTL); err != nil {
		m.logger.Warn("save cache mirror failed", zap.Int64("char_id", charID), zap.Error(err))
	}
}

// SaveAll persists every loaded session. Used by the auto-save task and
// at shutdown; individual failures are logged and do not stop the rest.
func (m *Manager) SaveAll(ctx context.Context) {
	m.mu.Lock()
	active := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		active = append(active, s)
	}
	m.mu.Unlock()

	for _, s := range active {
		if err := m.Save(ctx, s); err != nil {
			m.logger.Error("auto-save failed", zap.Int64("char_id", s.CharID), zap.Error(err))
		}
	}
}

// Count returns the number of loaded sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// All returns a snapshot of the loaded sessions.
func (m *Manager) All() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Evict saves the session and drops it from memory.
func (m *Manager) Evict(ctx context.Context, charID int64) error {
	m.mu.Lock()
	s, ok := m.sessions[charID]
	if ok {
		delete(m.sessions, charID)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.Save(ctx, s)
}
