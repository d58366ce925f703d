package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aoisora/srpg-server/game/item"
	"go.uber.org/zap"
)

// Catalog loads the item definition file, validates every entry,
// repairs recoverable fields, and serves typed definitions by id. It is
// the data-loading collaborator behind consumable use and equipment
// re-hydration.
type Catalog struct {
	dataPath string
	defs     map[string]*item.Definition
	results  map[string]item.ValidationResult
	logger   *zap.Logger
}

// NewCatalog creates a Catalog reading from dataPath (a directory
// containing items.json).
func NewCatalog(dataPath string, logger *zap.Logger) *Catalog {
	return &Catalog{
		dataPath: dataPath,
		defs:     make(map[string]*item.Definition),
		results:  make(map[string]item.ValidationResult),
		logger:   logger,
	}
}

// Load reads and indexes items.json. Entries with validation errors are
// reported and skipped; entries with warnings are repaired with
// defaults and kept.
func (c *Catalog) Load() error {
	path := filepath.Join(c.dataPath, "items.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return c.LoadRaw(raw)
}

// LoadRaw validates and indexes raw catalog entries. Exposed so tests
// and embedded fixtures can build a catalog without touching the disk.
func (c *Catalog) LoadRaw(raw []map[string]any) error {
	c.results = item.ValidateBatch(raw)
	loaded, skipped := 0, 0
	for _, entry := range raw {
		res := item.ValidateDefinition(entry)
		if !res.Valid {
			skipped++
			for _, e := range res.Errors {
				c.logger.Warn("catalog entry rejected",
					zap.Any("id", entry["id"]),
					zap.String("code", e.Code),
					zap.String("field", e.Field))
			}
			continue
		}
		corrected := item.ApplyDefaults(entry, res)
		def, err := buildDefinition(corrected)
		if err != nil {
			skipped++
			c.logger.Warn("catalog entry unusable", zap.Any("id", entry["id"]), zap.Error(err))
			continue
		}
		c.defs[def.Base.ID] = def
		loaded++
	}
	c.logger.Info("item catalog loaded", zap.Int("items", loaded), zap.Int("skipped", skipped))
	return nil
}

// rawEntry mirrors one catalog file entry with all optional facets.
type rawEntry struct {
	item.Item
	Slot           item.Slot           `json:"slot"`
	Stats          item.EquipmentStats `json:"stats"`
	Requirements   item.Requirements   `json:"requirements"`
	Durability     int                 `json:"durability"`
	MaxDurability  int                 `json:"maxDurability"`
	Effects        []item.ItemEffect   `json:"effects"`
	ConsumableType string              `json:"consumableType"`
	UsableInBattle bool                `json:"usableInBattle"`
	TargetType     string              `json:"targetType"`
}

func buildDefinition(corrected map[string]any) (*item.Definition, error) {
	data, err := json.Marshal(corrected)
	if err != nil {
		return nil, err
	}
	var entry rawEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	def := &item.Definition{Base: entry.Item}
	if entry.Type.Equippable() {
		def.Equipment = &item.Equipment{
			Item:          entry.Item,
			Slot:          entry.Slot,
			Stats:         entry.Stats,
			Requirements:  entry.Requirements,
			Durability:    entry.Durability,
			MaxDurability: entry.MaxDurability,
			Effects:       entry.Effects,
		}
	}
	if entry.Type == item.TypeConsumable {
		def.Consumable = &item.Consumable{
			Item:           entry.Item,
			ConsumableType: entry.ConsumableType,
			Effects:        entry.Effects,
			UsableInBattle: entry.UsableInBattle,
			TargetType:     entry.TargetType,
		}
	}
	return def, nil
}

// Definition resolves an item id to its full definition.
func (c *Catalog) Definition(id string) (*item.Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// Equipment resolves an item id to its equipment facet, or nil.
func (c *Catalog) Equipment(id string) *item.Equipment {
	if def, ok := c.defs[id]; ok {
		return def.Equipment
	}
	return nil
}

// Consumable resolves an item id to its consumable facet, or nil.
func (c *Catalog) Consumable(id string) *item.Consumable {
	if def, ok := c.defs[id]; ok {
		return def.Consumable
	}
	return nil
}

// All returns every loaded definition.
func (c *Catalog) All() []*item.Definition {
	out := make([]*item.Definition, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def)
	}
	return out
}

// Results returns the validation results of the last load, keyed by
// item id (or unknown-N for entries without one).
func (c *Catalog) Results() map[string]item.ValidationResult {
	return c.results
}
