package item

import "fmt"

// Validation issue codes. Errors make an entry unusable; warnings are
// recoverable by ApplyDefaults.
const (
	CodeMissingID          = "missing_id"
	CodeMissingName        = "missing_name"
	CodeInvalidType        = "invalid_type"
	CodeInvalidSlot        = "invalid_slot"
	CodeMissingEffects     = "missing_effects"
	CodeInvalidDurability  = "invalid_max_durability"
	CodeInvalidMaxStack    = "invalid_max_stack"
	CodeNegativePrice      = "negative_price"
	CodeUnknownRarity      = "unknown_rarity"
	CodeMissingDescription = "missing_description"
	CodeMissingIcon        = "missing_icon"
	CodeDurabilityOverMax  = "durability_exceeds_max"
	CodeMissingStats       = "missing_stats"
	CodeMissingRequirement = "missing_requirements"
	CodeInvalidLevel       = "invalid_level"
	CodeMissingBattleFlag  = "missing_usable_in_battle"
)

// ValidationIssue describes one problem found in a raw catalog entry.
type ValidationIssue struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult is the outcome of validating one raw catalog entry.
// Valid is true iff there are no errors; warnings alone leave the entry
// usable after ApplyDefaults.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

func (r *ValidationResult) addError(code, field, message string, value any) {
	r.Errors = append(r.Errors, ValidationIssue{Code: code, Field: field, Message: message, Value: value})
}

func (r *ValidationResult) addWarning(code, field, message string, value any) {
	r.Warnings = append(r.Warnings, ValidationIssue{Code: code, Field: field, Message: message, Value: value})
}

// ---- raw field accessors ----
// Catalog files are decoded into map[string]any before any typing; JSON
// numbers arrive as float64.

func strField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func numField(raw map[string]any, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

func arrField(raw map[string]any, key string) ([]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

func mapField(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// ValidateDefinition checks a raw catalog entry against the item schema.
// It never mutates raw.
func ValidateDefinition(raw map[string]any) ValidationResult {
	var res ValidationResult

	id, ok := strField(raw, "id")
	if !ok || id == "" {
		res.addError(CodeMissingID, "id", "item id is missing or not a string", raw["id"])
	}
	name, ok := strField(raw, "name")
	if !ok || name == "" {
		res.addError(CodeMissingName, "name", "item name is missing or not a string", raw["name"])
	}

	typStr, ok := strField(raw, "type")
	typ := Type(typStr)
	if !ok || !typ.Valid() {
		res.addError(CodeInvalidType, "type", fmt.Sprintf("unknown item type %q", typStr), raw["type"])
	}

	if n, present := numField(raw, "maxStack"); !present || n < 1 {
		res.addWarning(CodeInvalidMaxStack, "maxStack", "maxStack missing or below 1, defaults to 1", raw["maxStack"])
	}
	if n, present := numField(raw, "sellPrice"); !present || n < 0 {
		res.addWarning(CodeNegativePrice, "sellPrice", "sellPrice missing or negative, defaults to 0", raw["sellPrice"])
	}
	if n, present := numField(raw, "buyPrice"); !present || n < 0 {
		res.addWarning(CodeNegativePrice, "buyPrice", "buyPrice missing or negative, defaults to 0", raw["buyPrice"])
	}
	if s, present := strField(raw, "rarity"); !present || !Rarity(s).Valid() {
		res.addWarning(CodeUnknownRarity, "rarity", fmt.Sprintf("unknown rarity %q, defaults to common", s), raw["rarity"])
	}
	if s, present := strField(raw, "description"); !present || s == "" {
		res.addWarning(CodeMissingDescription, "description", "description is missing", nil)
	}
	if s, present := strField(raw, "iconPath"); !present || s == "" {
		res.addWarning(CodeMissingIcon, "iconPath", "icon path is missing", nil)
	}

	if typ.Equippable() {
		validateEquipmentFacet(raw, &res)
	}
	if typ == TypeConsumable {
		validateConsumableFacet(raw, &res)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func validateEquipmentFacet(raw map[string]any, res *ValidationResult) {
	slot, ok := strField(raw, "slot")
	if !ok || !Slot(slot).Valid() {
		res.addError(CodeInvalidSlot, "slot", fmt.Sprintf("invalid equipment slot %q", slot), raw["slot"])
	}
	if _, ok := arrField(raw, "effects"); !ok {
		res.addError(CodeMissingEffects, "effects", "equipment requires an effects array", raw["effects"])
	}
	maxDur, ok := numField(raw, "maxDurability")
	if !ok || maxDur <= 0 {
		res.addError(CodeInvalidDurability, "maxDurability", "maxDurability must be positive", raw["maxDurability"])
	}
	if dur, present := numField(raw, "durability"); !present || (ok && dur > maxDur) {
		res.addWarning(CodeDurabilityOverMax, "durability", "durability missing or above max, defaults to maxDurability", raw["durability"])
	}
	if _, ok := mapField(raw, "stats"); !ok {
		res.addWarning(CodeMissingStats, "stats", "equipment stats missing, defaults to no bonuses", nil)
	}
	reqs, ok := mapField(raw, "requirements")
	if !ok {
		res.addWarning(CodeMissingRequirement, "requirements", "requirements missing, defaults to level 1", nil)
	} else if lvl, present := numField(reqs, "level"); present && lvl < 1 {
		res.addWarning(CodeInvalidLevel, "requirements.level", "required level below 1, defaults to 1", lvl)
	}
}

func validateConsumableFacet(raw map[string]any, res *ValidationResult) {
	if _, ok := arrField(raw, "effects"); !ok {
		res.addError(CodeMissingEffects, "effects", "consumable requires an effects array", raw["effects"])
	}
	if _, ok := raw["usableInBattle"].(bool); !ok {
		res.addWarning(CodeMissingBattleFlag, "usableInBattle", "usableInBattle missing, defaults to true", nil)
	}
}

// ApplyDefaults returns a copy of raw with every warned-about field
// replaced by its documented default. Fields that passed validation are
// left untouched; errors are not repairable here.
func ApplyDefaults(raw map[string]any, res ValidationResult) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, w := range res.Warnings {
		switch w.Field {
		case "maxStack":
			out["maxStack"] = float64(1)
		case "sellPrice":
			out["sellPrice"] = float64(0)
		case "buyPrice":
			out["buyPrice"] = float64(0)
		case "rarity":
			out["rarity"] = string(RarityCommon)
		case "description":
			out["description"] = ""
		case "iconPath":
			out["iconPath"] = ""
		case "durability":
			if maxDur, ok := numField(out, "maxDurability"); ok {
				out["durability"] = maxDur
			}
		case "stats":
			out["stats"] = map[string]any{}
		case "requirements":
			out["requirements"] = map[string]any{"level": float64(1)}
		case "requirements.level":
			if reqs, ok := mapField(out, "requirements"); ok {
				fixed := make(map[string]any, len(reqs))
				for k, v := range reqs {
					fixed[k] = v
				}
				fixed["level"] = float64(1)
				out["requirements"] = fixed
			}
		case "usableInBattle":
			out["usableInBattle"] = true
		}
	}
	return out
}

// ValidateBatch validates a whole catalog file. Entries without a usable
// id are keyed unknown-N so no result is dropped.
func ValidateBatch(items []map[string]any) map[string]ValidationResult {
	results := make(map[string]ValidationResult, len(items))
	unknown := 0
	for _, raw := range items {
		key, ok := strField(raw, "id")
		if !ok || key == "" {
			unknown++
			key = fmt.Sprintf("unknown-%d", unknown)
		}
		results[key] = ValidateDefinition(raw)
	}
	return results
}
