package engine

import (
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// expireEffects drops every active effect whose duration has elapsed,
// preserving the order of the survivors.
func expireEffects(b *battle.Battle, now time.Time) {
	kept := b.ActiveEffects[:0]
	for _, e := range b.ActiveEffects {
		if !e.ExpiredAt(now) {
			kept = append(kept, e)
		}
	}
	b.ActiveEffects = kept
}

// applyDurationEffects walks the active effects in cast order, applies heals
// directly and fills the tick's rage/freeze/jump sets. The sets are rebuilt
// from scratch every tick so an expired effect stops mattering immediately.
func (tc *tickContext) applyDurationEffects() {
	for _, e := range tc.b.ActiveEffects {
		lvl := tc.tables.Spell(e.Type).Level(e.Level)
		if lvl == nil {
			continue
		}
		switch {
		case lvl.Heal != nil:
			tc.applyHeal(e, lvl.Heal)
		case lvl.Rage != nil:
			tc.markRaged(e, lvl.Rage)
		case lvl.Freeze != nil:
			tc.markFrozen(e)
		case lvl.Jump != nil:
			tc.markJumping(e)
		}
	}
}

func (tc *tickContext) applyHeal(e *battle.ActiveSpellEffect, p *config.HealParams) {
	amount := p.HealPerSecond * tc.dt
	for _, t := range tc.b.Troops {
		if !t.Alive() || t.Position.Dist(e.Position) > e.Radius {
			continue
		}
		t.CurrentHP += amount
		if t.CurrentHP > t.MaxHP {
			t.CurrentHP = t.MaxHP
		}
	}
}

func (tc *tickContext) markRaged(e *battle.ActiveSpellEffect, p *config.RageParams) {
	for _, t := range tc.b.Troops {
		if !t.Alive() || t.Position.Dist(e.Position) > e.Radius {
			continue
		}
		cur, ok := tc.rage[t.ID]
		if !ok || p.DamageBoost > cur.damage {
			tc.rage[t.ID] = rageBuff{damage: p.DamageBoost, speed: p.SpeedBoost}
		}
	}
}

func (tc *tickContext) markFrozen(e *battle.ActiveSpellEffect) {
	for _, bt := range tc.b.Buildings {
		if bt.IsDestroyed || bt.Position.Dist(e.Position) > e.Radius {
			continue
		}
		tc.frozen[bt.ID] = true
	}
}

func (tc *tickContext) markJumping(e *battle.ActiveSpellEffect) {
	for _, t := range tc.b.Troops {
		if !t.Alive() || t.Position.Dist(e.Position) > e.Radius {
			continue
		}
		tc.jump[t.ID] = true
	}
}

// ApplyInstantSpell resolves an apply-once spell (Lightning, Earthquake) at
// the cast point. Duration spells never come through here.
func ApplyInstantSpell(b *battle.Battle, tables *config.Balance, spellType string, level int, pos battle.Vec) {
	lvl := tables.Spell(spellType).Level(level)
	if lvl == nil {
		return
	}
	switch {
	case lvl.Lightning != nil:
		applyLightning(b, tables, lvl, pos)
	case lvl.Earthquake != nil:
		applyEarthquake(b, tables, lvl, pos)
	}
}

// applyLightning hits every standing building within radius with the full
// damage as one lump sum. The configured strike count only shapes the
// visual presentation.
func applyLightning(b *battle.Battle, tables *config.Balance, lvl *config.SpellLevel, pos battle.Vec) {
	for _, bt := range b.Buildings {
		if bt.IsDestroyed || bt.Position.Dist(pos) > lvl.Radius {
			continue
		}
		damageBuilding(b, tables, bt, lvl.Lightning.TotalDamage)
	}
}

// applyEarthquake deals percentage-of-max-HP damage. Walls take an extra
// multiplier and can be levelled outright; everything else is floored at
// 1 HP so an earthquake alone never destroys a building.
func applyEarthquake(b *battle.Battle, tables *config.Balance, lvl *config.SpellLevel, pos battle.Vec) {
	p := lvl.Earthquake
	for _, bt := range b.Buildings {
		if bt.IsDestroyed || bt.Position.Dist(pos) > lvl.Radius {
			continue
		}
		dmg := bt.MaxHP * p.DamagePercent
		if bt.Category == battle.CategoryWall {
			dmg *= p.WallMultiplier
			damageBuilding(b, tables, bt, dmg)
			continue
		}
		if bt.CurrentHP-dmg < 1 {
			dmg = bt.CurrentHP - 1
		}
		damageBuilding(b, tables, bt, dmg)
	}
}
