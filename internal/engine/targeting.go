package engine

import (
	"github.com/ravenfort/siegecraft/internal/battle"
)

// matchesPreference reports whether a building satisfies the troop's
// preferred target category.
func matchesPreference(pref battle.TargetPreference, cat battle.BuildingCategory) bool {
	switch pref {
	case battle.PreferDefenses:
		return cat == battle.CategoryDefense
	case battle.PreferResources:
		return cat == battle.CategoryResource
	case battle.PreferWalls:
		return cat == battle.CategoryWall
	default:
		return true
	}
}

// selectTarget picks the nearest standing building matching the troop's
// preference, falling back to the nearest of any category. When the troop is
// under a jump effect, walls are excluded from candidacy unless that would
// leave nothing to attack. Ties go to the earlier building in layout order
// so repeated runs pick identical targets.
func (tc *tickContext) selectTarget(t *battle.Troop, pref battle.TargetPreference) *battle.BuildingTarget {
	ignoreWalls := tc.jump[t.ID]

	candidates := make([]*battle.BuildingTarget, 0, len(tc.b.Buildings))
	for _, bt := range tc.b.Buildings {
		if bt.IsDestroyed {
			continue
		}
		if ignoreWalls && bt.Category == battle.CategoryWall {
			continue
		}
		candidates = append(candidates, bt)
	}
	if len(candidates) == 0 && ignoreWalls {
		for _, bt := range tc.b.Buildings {
			if !bt.IsDestroyed {
				candidates = append(candidates, bt)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if best := nearest(t.Position, candidates, func(bt *battle.BuildingTarget) bool {
		return matchesPreference(pref, bt.Category)
	}); best != nil {
		return best
	}
	return nearest(t.Position, candidates, nil)
}

// nearest returns the first closest candidate accepted by the filter.
func nearest(from battle.Vec, candidates []*battle.BuildingTarget, accept func(*battle.BuildingTarget) bool) *battle.BuildingTarget {
	var best *battle.BuildingTarget
	bestDist := 0.0
	for _, bt := range candidates {
		if accept != nil && !accept(bt) {
			continue
		}
		d := from.Dist(bt.Position)
		if best == nil || d < bestDist {
			best = bt
			bestDist = d
		}
	}
	return best
}
