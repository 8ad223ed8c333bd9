/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package quadtree

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"boothplan/internal/vector"
)

var world = vector.R(0, 0, 1024, 1024)

func randomFrame(r *rand.Rand) vector.Frame {
	rot := 0.0
	switch r.Intn(3) {
	case 1:
		rot = float64(r.Intn(4)) * 90
	case 2:
		rot = r.Float64() * 360
	}
	return vector.F(r.Float64()*900+20, r.Float64()*900+20, r.Float64()*60+1, r.Float64()*60+1, rot)
}

func bruteForce(objs map[string]vector.Frame, q vector.Frame) []string {
	var ids []string
	for id, f := range objs {
		if vector.RectsOverlap(q, f) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func ids(objs []Object) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ID)
	}
	return out
}

func TestDetectCollisionMatchesLinearScan(t *testing.T) {
	configs := []struct{ maxObjects, maxLevels int }{
		{1, 0}, {1, 6}, {4, 4}, {10, 8}, {2, 12},
	}
	for _, cfg := range configs {
		t.Run(fmt.Sprintf("objs=%d/levels=%d", cfg.maxObjects, cfg.maxLevels), func(t *testing.T) {
			r := rand.New(rand.NewSource(int64(cfg.maxObjects*100 + cfg.maxLevels)))
			tree := New(world, cfg.maxObjects, cfg.maxLevels)
			all := map[string]vector.Frame{}
			for i := 0; i < 300; i++ {
				id := fmt.Sprintf("item-%03d", i)
				f := randomFrame(r)
				require.NoError(t, tree.Insert(id, f))
				all[id] = f
			}
			require.Equal(t, len(all), tree.Len())
			for i := 0; i < 200; i++ {
				q := randomFrame(r)
				want := bruteForce(all, q)
				got := ids(tree.DetectCollision(q))
				if len(want) == 0 {
					require.Empty(t, got)
					continue
				}
				require.Equal(t, want, got)
			}
		})
	}
}

func TestInsertDuplicate(t *testing.T) {
	tree := New(world, 4, 4)
	require.NoError(t, tree.Insert("a", vector.F(10, 10, 10, 10, 0)))
	require.ErrorIs(t, tree.Insert("a", vector.F(50, 50, 10, 10, 0)), ErrDuplicateID)
	require.Equal(t, 1, tree.Len())
}

func TestRemoveThenReinsert(t *testing.T) {
	tree := New(world, 2, 6)
	r := rand.New(rand.NewSource(3))
	frames := map[string]vector.Frame{}
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("b%02d", i)
		frames[id] = randomFrame(r)
		require.NoError(t, tree.Insert(id, frames[id]))
	}
	before := tree.DetectCollision(vector.F(0, 0, 1024, 1024, 0))

	for id := range frames {
		tree.Remove(id)
	}
	require.Zero(t, tree.Len())
	st := tree.Stats()
	require.Equal(t, 1, st.Nodes, "empty tree collapses to the root leaf")
	require.Zero(t, st.References)

	for id, f := range frames {
		require.NoError(t, tree.Insert(id, f))
	}
	require.Equal(t, before, tree.DetectCollision(vector.F(0, 0, 1024, 1024, 0)))
}

func TestRemoveIdempotent(t *testing.T) {
	tree := New(world, 4, 4)
	require.NoError(t, tree.Insert("a", vector.F(10, 10, 10, 10, 0)))
	tree.Remove("a")
	tree.Remove("a")
	tree.Remove("missing")
	require.False(t, tree.Has("a"))
	require.Empty(t, tree.DetectCollision(vector.F(0, 0, 100, 100, 0)))
}

func TestStraddlingObjectReportedOnce(t *testing.T) {
	tree := New(world, 1, 4)
	require.NoError(t, tree.Insert("a", vector.F(10, 10, 10, 10, 0)))
	require.NoError(t, tree.Insert("b", vector.F(900, 900, 10, 10, 0)))
	// spans the center split lines
	require.NoError(t, tree.Insert("wide", vector.F(400, 400, 200, 200, 30)))

	st := tree.Stats()
	require.Greater(t, st.References, st.Objects)

	got := tree.DetectCollision(vector.F(300, 300, 400, 400, 0))
	require.Equal(t, []string{"wide"}, ids(got))
}

func TestOverflowOutsideRoot(t *testing.T) {
	tree := New(vector.R(0, 0, 100, 100), 2, 3)
	require.NoError(t, tree.Insert("out", vector.F(-50, -50, 20, 20, 0)))
	require.NoError(t, tree.Insert("edge", vector.F(90, 90, 20, 20, 0)))
	require.NoError(t, tree.Insert("in", vector.F(10, 10, 20, 20, 0)))

	require.Equal(t, 2, tree.Stats().Overflow)
	require.Equal(t, []string{"out"}, ids(tree.DetectCollision(vector.F(-45, -45, 5, 5, 0))))
	require.Equal(t, []string{"edge"}, ids(tree.DetectCollision(vector.F(105, 105, 2, 2, 0))))
	tree.Remove("out")
	require.Equal(t, 1, tree.Stats().Overflow)
}

func TestTouchingIsNotCollision(t *testing.T) {
	tree := New(world, 4, 4)
	require.NoError(t, tree.Insert("a", vector.F(100, 100, 50, 50, 0)))
	require.Empty(t, tree.DetectCollision(vector.F(150, 100, 50, 50, 0)))
	require.Len(t, tree.DetectCollision(vector.F(149, 100, 50, 50, 0)), 1)
}

func TestQueryPointAndSearch(t *testing.T) {
	tree := New(world, 1, 5)
	require.NoError(t, tree.Insert("rot", vector.F(0, 0, 100, 10, 90)))
	require.NoError(t, tree.Insert("flat", vector.F(200, 200, 100, 10, 0)))

	require.Equal(t, []string{"rot"}, ids(tree.QueryPoint(vector.Pt{X: 50, Y: 40})))
	require.Empty(t, tree.QueryPoint(vector.Pt{X: 90, Y: 5}))
	require.Equal(t, []string{"flat", "rot"}, ids(tree.Search(world)))
}

func TestSplitAndCollapse(t *testing.T) {
	tree := New(world, 2, 5)
	require.NoError(t, tree.Insert("a", vector.F(10, 10, 5, 5, 0)))
	require.NoError(t, tree.Insert("b", vector.F(600, 10, 5, 5, 0)))
	require.Equal(t, 1, tree.Stats().Nodes)

	require.NoError(t, tree.Insert("c", vector.F(10, 600, 5, 5, 0)))
	st := tree.Stats()
	require.Equal(t, 5, st.Nodes)
	require.Equal(t, 1, st.Depth)

	tree.Remove("c")
	require.Equal(t, 1, tree.Stats().Nodes)

	tree.Clear()
	require.Zero(t, tree.Len())
}
