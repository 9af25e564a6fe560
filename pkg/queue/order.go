package queue

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// intersects reports whether any element of a is also in b.
func intersects(a, b mapset.Set[string]) bool {
	if a.Cardinality() > b.Cardinality() {
		a, b = b, a
	}
	for _, n := range a.ToSlice() {
		if b.Contains(n) {
			return true
		}
	}
	return false
}

// orderUnits runs the cycle tolerant topological sort over the build
// units.
//
// A unit is ready when no remaining unit has a genuine forward edge
// into it: v blocks u if v produces something u depends on, unless v
// in turn depends on something u produces.  Such mutual pairs are a
// true cycle; neither side blocks the other, but both get remembered
// as potential cycle breakers.  If a pass finds nothing ready, the
// smallest remembered breaker (fewest dependencies, then smallest
// name key) is forced into the output; with no breaker on record the
// globally smallest remaining unit goes instead.  The forced unit's
// position is knowingly wrong with respect to the broken edge, which
// is the price of always producing a total order.
func orderUnits(units []*buildUnit) []*buildUnit {
	todo := make([]*buildUnit, len(units))
	copy(todo, units)
	sort.SliceStable(todo, func(i, j int) bool { return unitLess(todo[i], todo[j]) })

	done := make([]*buildUnit, 0, len(todo))
	for len(todo) > 0 {
		var ready []*buildUnit
		var breakers []*buildUnit

		for _, u := range todo {
			blocked := false
			mutual := false
			for _, v := range todo {
				if v == u {
					continue
				}
				if !intersects(v.packages, u.makedepends) {
					continue
				}
				if intersects(u.packages, v.makedepends) {
					mutual = true
					continue
				}
				blocked = true
				break
			}
			if mutual {
				breakers = append(breakers, u)
			}
			if !blocked {
				ready = append(ready, u)
			}
		}

		if len(ready) == 0 {
			pool := breakers
			if len(pool) == 0 {
				pool = todo
			}
			pick := pool[0]
			for _, u := range pool[1:] {
				if unitLess(u, pick) {
					pick = u
				}
			}
			ready = []*buildUnit{pick}
		}

		isReady := make(map[*buildUnit]bool, len(ready))
		for _, u := range ready {
			isReady[u] = true
		}
		remaining := todo[:0]
		for _, u := range todo {
			if !isReady[u] {
				remaining = append(remaining, u)
			}
		}
		todo = remaining
		done = append(done, ready...)
	}
	return done
}
