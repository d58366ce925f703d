package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoisora/srpg-server/model"
)

func newCharacter() *Character {
	return &Character{
		ID: 1, Name: "Hero", Job: "warrior", Level: 5,
		Stats: Stats{Attack: 10, Defense: 5, Speed: 10, Accuracy: 95, Evasion: 5},
		HP:    80, MaxHP: 100, MP: 30, MaxMP: 50,
	}
}

func TestFromModel_ApplyToModel_RoundTrip(t *testing.T) {
	row := &model.Character{
		ID: 7, AccountID: 3, Name: "Mira", Job: "mage", Level: 12,
		HP: 60, MaxHP: 90, MP: 110, MaxMP: 120,
		Attack: 8, Defense: 6, Speed: 11, Accuracy: 97, Evasion: 9,
	}

	ch := FromModel(row)
	assert.Equal(t, int64(7), ch.ID)
	assert.Equal(t, "Mira", ch.Name)
	assert.Equal(t, 12, ch.Level)
	assert.Equal(t, Stats{Attack: 8, Defense: 6, Speed: 11, Accuracy: 97, Evasion: 9}, ch.Stats)
	assert.Equal(t, 60, ch.HP)
	assert.Equal(t, 120, ch.MaxMP)

	ch.Level = 13
	ch.Stats.Attack = 9
	ch.HP = 90

	ch.ApplyToModel(row)
	assert.Equal(t, 13, row.Level)
	assert.Equal(t, 9, row.Attack)
	assert.Equal(t, 90, row.HP)
	assert.Equal(t, int64(3), row.AccountID, "identity columns are not rewritten")
	assert.Equal(t, "Mira", row.Name)
}

func TestStat(t *testing.T) {
	ch := newCharacter()

	for name, want := range map[string]int{
		"attack": 10, "defense": 5, "speed": 10, "accuracy": 95, "evasion": 5,
		"hp": 100, "mp": 50,
	} {
		got, ok := ch.Stat(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ch.Stat("luck")
	assert.False(t, ok)
}

func TestAdjustStat(t *testing.T) {
	ch := newCharacter()

	require.True(t, ch.AdjustStat("attack", 5))
	assert.Equal(t, 15, ch.Stats.Attack)

	require.True(t, ch.AdjustStat("speed", -3))
	assert.Equal(t, 7, ch.Stats.Speed)

	assert.False(t, ch.AdjustStat("luck", 1))
}

func TestAdjustStat_MaxHPRules(t *testing.T) {
	ch := newCharacter() // 80/100

	// Raising the maximum never raises the current value.
	require.True(t, ch.AdjustStat("hp", 20))
	assert.Equal(t, 120, ch.MaxHP)
	assert.Equal(t, 80, ch.HP)

	// Lowering it clamps the current value down.
	require.True(t, ch.AdjustStat("hp", -50))
	assert.Equal(t, 70, ch.MaxHP)
	assert.Equal(t, 70, ch.HP)

	// The maximum itself floors at zero.
	require.True(t, ch.AdjustStat("hp", -200))
	assert.Equal(t, 0, ch.MaxHP)
	assert.Equal(t, 0, ch.HP)
}

func TestAdjustStat_MaxMPRules(t *testing.T) {
	ch := newCharacter() // 30/50

	require.True(t, ch.AdjustStat("mp", -30))
	assert.Equal(t, 20, ch.MaxMP)
	assert.Equal(t, 20, ch.MP)

	require.True(t, ch.AdjustStat("mp", 100))
	assert.Equal(t, 120, ch.MaxMP)
	assert.Equal(t, 20, ch.MP)
}

func TestHeal(t *testing.T) {
	ch := newCharacter() // 80/100

	assert.Equal(t, 15, ch.Heal(15))
	assert.Equal(t, 95, ch.HP)

	assert.Equal(t, 5, ch.Heal(50), "overheal reports only the restored amount")
	assert.Equal(t, 100, ch.HP)

	assert.Equal(t, 0, ch.Heal(10))
}

func TestRestoreMP(t *testing.T) {
	ch := newCharacter() // 30/50

	assert.Equal(t, 20, ch.RestoreMP(40))
	assert.Equal(t, 50, ch.MP)
}

func TestDamage(t *testing.T) {
	ch := newCharacter() // 80/100

	assert.Equal(t, 30, ch.Damage(30))
	assert.Equal(t, 50, ch.HP)

	assert.Equal(t, 50, ch.Damage(999), "damage floors at zero HP")
	assert.Equal(t, 0, ch.HP)

	assert.Equal(t, 0, ch.Damage(10))
}

func TestStatusEffects_FIFO(t *testing.T) {
	ch := newCharacter()

	_, ok := ch.CureStatus()
	assert.False(t, ok)

	ch.InflictStatus("poison")
	ch.InflictStatus("blind")

	cured, ok := ch.CureStatus()
	require.True(t, ok)
	assert.Equal(t, "poison", cured, "oldest status cures first")
	assert.Equal(t, []string{"blind"}, ch.StatusEffects)

	cured, ok = ch.CureStatus()
	require.True(t, ok)
	assert.Equal(t, "blind", cured)
	assert.Empty(t, ch.StatusEffects)
}
