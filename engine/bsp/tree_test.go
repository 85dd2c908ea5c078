package bsp

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/hivebattle/engine/grid"
)

func occ(x, y int) *Occupant {
	return NewOccupant(grid.P(x, y), grid.Mineral, NoTeam, 0)
}

func TestDepthFor(t *testing.T) {
	cases := []struct {
		w, h, want int
	}{
		{10, 10, 0},
		{20, 10, 1},
		{100, 100, 6},
		{64, 64, 5},
		{5000, 5000, MaxDepth},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DepthFor(c.w, c.h), "%dx%d", c.w, c.h)
	}
}

func TestNewShape(t *testing.T) {
	tr := New(64, 32, 3)
	require.Len(t, tr.partitions, 15)
	leaves := tr.Leaves()
	require.Len(t, leaves, 8)

	covered := 0
	for _, b := range leaves {
		covered += b.Width() * b.Height()
	}
	assert.Equal(t, 64*32, covered, "leaves must tile the grid exactly")

	root := tr.partitions[0]
	assert.True(t, root.SplitAlongX)
	assert.Equal(t, 31, root.SplitValue)
	assert.False(t, tr.partitions[1].SplitAlongX)
	assert.Equal(t, 15, tr.partitions[1].SplitValue)
}

func TestInsertRoutesToContainingLeaf(t *testing.T) {
	tr := New(40, 40, 4)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		tr.Insert(occ(rng.Intn(40), rng.Intn(40)))
	}
	for i := range tr.partitions {
		p := &tr.partitions[i]
		if !p.IsLeaf() {
			continue
		}
		for e := p.FirstElement; e >= 0; e = tr.elements[e].Next {
			o := tr.store.Get(tr.elements[e].Element)
			assert.True(t, p.Bounds.Contains(o.Pos), "%v outside %v", o.Pos, p.Bounds)
		}
	}
}

func TestNearestSingle(t *testing.T) {
	tr := NewForGrid(10, 10)
	tr.Insert(occ(5, 5))

	got, ok := tr.Nearest(grid.P(0, 0), nil)
	require.True(t, ok)
	assert.Equal(t, grid.P(5, 5), got)
}

func TestNearestSkipsTombstone(t *testing.T) {
	tr := New(10, 10, 2)
	a, b := occ(1, 1), occ(1, 2)
	tr.Insert(a)
	tr.Insert(b)
	tr.MarkDestroyed(a)
	tr.ReinsertAllAndCleanIfNeeded()

	got, ok := tr.Nearest(grid.P(0, 0), nil)
	require.True(t, ok)
	assert.Equal(t, grid.P(1, 2), got)
	assert.Equal(t, 1, tr.Len())
}

func TestEmptyAndFilteredQueries(t *testing.T) {
	tr := New(30, 30, 3)
	_, ok := tr.Nearest(grid.P(3, 3), nil)
	assert.False(t, ok)
	assert.Empty(t, tr.KNearest(grid.P(3, 3), 4, nil))
	assert.Empty(t, tr.InRange(grid.P(3, 3), 10, nil))

	tr.Insert(occ(4, 4))
	none := func(*Occupant) bool { return false }
	_, ok = tr.Nearest(grid.P(3, 3), none)
	assert.False(t, ok)
	assert.Empty(t, tr.KNearest(grid.P(3, 3), 4, none))
	assert.Empty(t, tr.InRange(grid.P(3, 3), 10, none))
	assert.Empty(t, tr.KNearest(grid.P(3, 3), 0, nil))
}

func TestSplitLineTies(t *testing.T) {
	tr := New(16, 16, 1)
	// x == 7 is the root split value and routes left
	tr.Insert(occ(7, 3))
	tr.Insert(occ(8, 3))

	got, ok := tr.Nearest(grid.P(9, 3), nil)
	require.True(t, ok)
	assert.Equal(t, grid.P(8, 3), got)

	got, ok = tr.Nearest(grid.P(7, 9), nil)
	require.True(t, ok)
	assert.Equal(t, grid.P(7, 3), got)

	assert.ElementsMatch(t, []grid.Pos{grid.P(7, 3), grid.P(8, 3)}, tr.InRange(grid.P(7, 3), 1, nil))
}

func TestCompactionThreshold(t *testing.T) {
	tr := New(20, 20, 2)
	var all []*Occupant
	for i := 0; i < 40; i++ {
		o := occ(i%20, i/20)
		all = append(all, o)
		tr.Insert(o)
	}
	require.Equal(t, 64, tr.store.Cap())

	for i := 0; i < MinCompactDestroyed; i++ {
		tr.MarkDestroyed(all[i])
	}
	// 8 of 64 slots is below 20%
	assert.False(t, tr.ReinsertAllAndCleanIfNeeded())
	assert.Equal(t, MinCompactDestroyed, tr.Tombstones())

	for i := MinCompactDestroyed; i < 13; i++ {
		tr.MarkDestroyed(all[i])
	}
	tr.MarkDestroyed(all[0]) // idempotent
	assert.Equal(t, 13, tr.Tombstones())
	assert.True(t, tr.ReinsertAllAndCleanIfNeeded())
	assert.Equal(t, 0, tr.Tombstones())
	assert.Equal(t, 27, tr.store.Len())
	assert.Equal(t, 27, tr.Len())
	assert.Len(t, tr.Positions(), 27)
}

func TestCellStoreGrowAndCompact(t *testing.T) {
	s := NewCellStore(2)
	var all []*Occupant
	for i := 0; i < 20; i++ {
		o := occ(i, 0)
		all = append(all, o)
		assert.Equal(t, i, s.Add(o))
	}
	assert.Equal(t, 32, s.Cap())
	assert.False(t, s.CompactIfNeeded())

	for i := 0; i < 20; i += 2 {
		all[i].destroyed = true
		s.IncrementDestroyed()
	}
	require.True(t, s.CompactIfNeeded())
	require.Equal(t, 10, s.Len())
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, 2*i+1, s.Get(i).Pos.X, "survivors keep their order")
	}
	assert.Equal(t, 0, s.Destroyed())
}

// brute-force oracle over a random workload of inserts and destroys
type oracle struct {
	live map[*Occupant]bool
}

func (or *oracle) sorted(q grid.Pos) []candidate {
	var out []candidate
	for o := range or.live {
		out = append(out, candidate{o, q.DistanceToSquared(o.Pos)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].d2 < out[j].d2 })
	return out
}

func randomWorkload(t *testing.T, seed int64, w, h int) (*Tree, *oracle) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	tr := NewForGrid(w, h)
	or := &oracle{live: map[*Occupant]bool{}}
	var inserted []*Occupant
	for i := 0; i < 600; i++ {
		if len(inserted) > 0 && rng.Intn(3) == 0 {
			o := inserted[rng.Intn(len(inserted))]
			tr.MarkDestroyed(o)
			delete(or.live, o)
		} else {
			o := occ(rng.Intn(w), rng.Intn(h))
			tr.Insert(o)
			inserted = append(inserted, o)
			or.live[o] = true
		}
		if i%50 == 0 {
			tr.ReinsertAllAndCleanIfNeeded()
		}
	}
	tr.ReinsertAllAndCleanIfNeeded()
	return tr, or
}

func TestCardinalityAfterChurn(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		tr, or := randomWorkload(t, seed, 60, 45)
		walked := 0
		tr.Walk(func(o *Occupant) {
			walked++
			assert.True(t, or.live[o])
		})
		assert.Equal(t, len(or.live), walked)
		assert.Equal(t, len(or.live), tr.Len())
	}
}

func TestQueriesMatchBruteForce(t *testing.T) {
	for seed := int64(10); seed < 16; seed++ {
		tr, or := randomWorkload(t, seed, 70, 50)
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < 50; i++ {
			q := grid.P(rng.Intn(70), rng.Intn(50))
			want := or.sorted(q)

			got, ok := tr.Nearest(q, nil)
			require.Equal(t, len(want) > 0, ok)
			if ok {
				assert.Equal(t, want[0].d2, q.DistanceToSquared(got), "nearest to %v", q)
			}

			k := 1 + rng.Intn(8)
			kn := tr.KNearest(q, k, nil)
			require.Len(t, kn, min(k, len(want)))
			for j, p := range kn {
				assert.Equal(t, want[j].d2, q.DistanceToSquared(p), "k-nearest #%d to %v", j, q)
			}

			r := rng.Float64() * 12
			var inR []grid.Pos
			for _, c := range want {
				if float64(c.d2) <= r*r {
					inR = append(inR, c.o.Pos)
				}
			}
			assert.ElementsMatch(t, inR, tr.InRange(q, r, nil), "range %.2f around %v", r, q)
			assert.Equal(t, len(inR), tr.CountInRange(q, r, nil))
		}
	}
}

func TestPredicateFiltersByTeam(t *testing.T) {
	tr := New(30, 30, 3)
	tr.Insert(NewOccupant(grid.P(2, 2), grid.FighterBot, 0, 1))
	tr.Insert(NewOccupant(grid.P(9, 9), grid.FighterBot, 1, 2))

	enemy := func(o *Occupant) bool { return o.Team != 0 }
	o, ok := tr.NearestOccupant(grid.P(1, 1), enemy)
	require.True(t, ok)
	assert.Equal(t, grid.P(9, 9), o.Pos)
	assert.EqualValues(t, 2, o.Owner)
}
