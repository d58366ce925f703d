package player

import "github.com/aoisora/srpg-server/model"

// Stats holds the combat stats of a character that equipment and item
// effects can modify.
type Stats struct {
	Attack   int `json:"attack"`
	Defense  int `json:"defense"`
	Speed    int `json:"speed"`
	Accuracy int `json:"accuracy"`
	Evasion  int `json:"evasion"`
}

// Character is the runtime character record. It is owned by the session
// layer; the inventory, equipment and effect systems mutate it in place
// but never store it beyond the duration of a call.
type Character struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Job           string   `json:"job"`
	Level         int      `json:"level"`
	Stats         Stats    `json:"stats"`
	HP            int      `json:"hp"`
	MaxHP         int      `json:"max_hp"`
	MP            int      `json:"mp"`
	MaxMP         int      `json:"max_mp"`
	StatusEffects []string `json:"status_effects"`
}

// FromModel builds a runtime Character from a persisted character row.
func FromModel(row *model.Character) *Character {
	return &Character{
		ID:    row.ID,
		Name:  row.Name,
		Job:   row.Job,
		Level: row.Level,
		Stats: Stats{
			Attack:   row.Attack,
			Defense:  row.Defense,
			Speed:    row.Speed,
			Accuracy: row.Accuracy,
			Evasion:  row.Evasion,
		},
		HP:    row.HP,
		MaxHP: row.MaxHP,
		MP:    row.MP,
		MaxMP: row.MaxMP,
	}
}

// ApplyToModel writes the runtime state back onto a character row for saving.
func (c *Character) ApplyToModel(row *model.Character) {
	row.Job = c.Job
	row.Level = c.Level
	row.Attack = c.Stats.Attack
	row.Defense = c.Stats.Defense
	row.Speed = c.Stats.Speed
	row.Accuracy = c.Stats.Accuracy
	row.Evasion = c.Stats.Evasion
	row.HP = c.HP
	row.MaxHP = c.MaxHP
	row.MP = c.MP
	row.MaxMP = c.MaxMP
}

// Stat returns the named combat stat. The second return reports whether
// the name is a known stat.
func (c *Character) Stat(name string) (int, bool) {
	switch name {
	case "attack":
		return c.Stats.Attack, true
	case "defense":
		return c.Stats.Defense, true
	case "speed":
		return c.Stats.Speed, true
	case "accuracy":
		return c.Stats.Accuracy, true
	case "evasion":
		return c.Stats.Evasion, true
	case "hp":
		return c.MaxHP, true
	case "mp":
		return c.MaxMP, true
	}
	return 0, false
}

// AdjustStat adds delta to the named stat. "hp" and "mp" address the
// maximum pools; lowering a maximum clamps the current value down, but
// raising it never raises the current value.
func (c *Character) AdjustStat(name string, delta int) bool {
	switch name {
	case "attack":
		c.Stats.Attack += delta
	case "defense":
		c.Stats.Defense += delta
	case "speed":
		c.Stats.Speed += delta
	case "accuracy":
		c.Stats.Accuracy += delta
	case "evasion":
		c.Stats.Evasion += delta
	case "hp":
		c.MaxHP += delta
		if c.MaxHP < 0 {
			c.MaxHP = 0
		}
		if c.HP > c.MaxHP {
			c.HP = c.MaxHP
		}
	case "mp":
		c.MaxMP += delta
		if c.MaxMP < 0 {
			c.MaxMP = 0
		}
		if c.MP > c.MaxMP {
			c.MP = c.MaxMP
		}
	default:
		return false
	}
	return true
}

// Heal restores up to n HP, clamped at MaxHP. Returns the amount
// actually restored.
func (c *Character) Heal(n int) int {
	before := c.HP
	c.HP += n
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	return c.HP - before
}

// RestoreMP restores up to n MP, clamped at MaxMP. Returns the amount
// actually restored.
func (c *Character) RestoreMP(n int) int {
	before := c.MP
	c.MP += n
	if c.MP > c.MaxMP {
		c.MP = c.MaxMP
	}
	return c.MP - before
}

// Damage subtracts n from current HP, floored at 0. Returns the damage
// actually dealt.
func (c *Character) Damage(n int) int {
	before := c.HP
	c.HP -= n
	if c.HP < 0 {
		c.HP = 0
	}
	return before - c.HP
}

// CureStatus removes the oldest status effect, if any. Returns the
// removed status and whether one was removed.
func (c *Character) CureStatus() (string, bool) {
	if len(c.StatusEffects) == 0 {
		return "", false
	}
	cured := c.StatusEffects[0]
	c.StatusEffects = c.StatusEffects[1:]
	return cured, true
}

// InflictStatus appends a status marker to the character's status list.
func (c *Character) InflictStatus(status string) {
	c.StatusEffects = append(c.StatusEffects, status)
}
