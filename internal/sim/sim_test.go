// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sim

import (
	"fmt"
	"math/rand/v2"
	"testing"

	simddb "github.com/nutax/simd-db"
	"github.com/stretchr/testify/require"
)

// openDoorsScalar is a row-at-a-time version of OpenDoors.
func openDoorsScalar(w *World) []bool {
	open := make([]bool, w.Doors.Len())
	for d := range open {
		for p := 0; p < w.Players.Len(); p++ {
			if w.PlayerTeam.At(w.Players, p) != w.DoorTeam.At(w.Doors, d) {
				continue
			}
			xd := w.DoorX.At(w.Doors, d) - w.PlayerX.At(w.Players, p)
			yd := w.DoorY.At(w.Doors, d) - w.PlayerY.At(w.Players, p)
			zd := w.DoorZ.At(w.Doors, d) - w.PlayerZ.At(w.Players, p)
			if (xd*xd+yd*yd)+zd*zd <= w.DoorRadius2.At(w.Doors, d) {
				open[d] = true
				break
			}
		}
	}
	return open
}

func requireMatchesScalar(t *testing.T, w *World) {
	t.Helper()
	want := openDoorsScalar(w)
	var n int
	for d, o := range want {
		got := w.DoorOpen.At(w.Doors, d)
		if o {
			n++
			require.Equalf(t, Open, got, "door %d", d)
		} else {
			require.Zerof(t, got, "door %d", d)
		}
	}
	require.Equal(t, n, w.OpenCount())
}

func TestOpenDoors(t *testing.T) {
	w := NewWorld(Config{Players: 4, Doors: 4, VectorWidth: 16, CacheLine: 64})
	w.SpawnDoor(0, 0, 0, 1, 1)
	w.SpawnDoor(0, 0, 0, 1, 2)
	w.SpawnDoor(3, 3, 3, 0, 1)
	w.SpawnDoor(4, 4, 4, 24, 0)

	w.OpenDoors()
	require.Zero(t, w.OpenCount())

	// On the edge of door 0's radius.
	w.SpawnPlayer(1, 0, 0, 1)
	// On door 2, with a zero radius.
	w.SpawnPlayer(3, 3, 3, 1)
	// Near door 3, wrong team.
	w.SpawnPlayer(4, 4, 4, 2)
	w.OpenDoors()
	require.Equal(t, []uint32{Open, 0, Open, 0}, w.DoorOpen.Live(w.Doors))

	// Doors close again once nobody is near.
	w.Players.Reset()
	w.OpenDoors()
	require.Equal(t, []uint32{0, 0, 0, 0}, w.DoorOpen.Live(w.Doors))
}

func TestOpenDoorsRandom(t *testing.T) {
	for _, vw := range []int{4, 16, 32, 64} {
		for _, doors := range []int{0, 1, 7, 37, 100} {
			t.Run(fmt.Sprintf("width=%d/doors=%d", vw, doors), func(t *testing.T) {
				rng := rand.New(rand.NewPCG(uint64(vw), uint64(doors)))
				w := NewWorld(Config{Players: DefaultPlayers, Doors: doors, VectorWidth: vw, CacheLine: 64})
				w.Generate(rng)
				require.Equal(t, DefaultPlayers, w.Players.Len())
				require.Equal(t, doors, w.Doors.Len())

				for frame := 0; frame < 5; frame++ {
					w.OpenDoors()
					requireMatchesScalar(t, w)
					require.Equal(t, min(doors/4, doors), w.Respawn(rng, doors/4))
					require.Equal(t, doors, w.Doors.Len())
				}
			})
		}
	}
}

func TestRespawn(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	w := NewWorld(Config{Players: 1, Doors: 10})
	require.Zero(t, w.Respawn(rng, 3))
	for i := 0; i < 4; i++ {
		w.SpawnDoor(0, 0, 0, 0, 0)
	}
	require.Equal(t, 4, w.Respawn(rng, 10))
	require.Equal(t, 4, w.Doors.Len())
	for _, o := range w.DoorOpen.Live(w.Doors) {
		require.Zero(t, o)
	}
}

func TestCentroid(t *testing.T) {
	w := NewWorld(Config{Players: 2, Doors: 2})
	x, y, z, n := Centroid(w.View())
	require.Zero(t, n)
	require.Zero(t, x+y+z)

	w.SpawnPlayer(0, 0, 0, 0)
	w.SpawnPlayer(2, 4, 0, 0)
	w.SpawnDoor(4, 2, 6, 1, 0)
	w.SpawnDoor(2, 2, 2, 1, 0)
	x, y, z, n = Centroid(w.View())
	require.Equal(t, 4, n)
	require.Equal(t, float32(2), x)
	require.Equal(t, float32(2), y)
	require.Equal(t, float32(2), z)

	// Tables without position columns are skipped.
	type other struct{}
	s := simddb.NewSchema[other](simddb.Options{Name: "other", Capacity: 1})
	simddb.AddTagged(s, PositionX)
	tbl := s.NewTable()
	tbl.Create()
	_, _, _, n = Centroid(simddb.NewView("mixed", tbl, w.Players))
	require.Equal(t, 2, n)
}

func TestWorldView(t *testing.T) {
	w := NewWorld(Config{Players: DefaultPlayers, Doors: DefaultDoors})
	w.Generate(rand.New(rand.NewPCG(3, 4)))
	v := w.View()
	require.Equal(t, 2, v.Len())
	require.Equal(t, DefaultPlayers+DefaultDoors, v.Rows())
	require.Equal(t, "players", v.Table(0).Name())
	require.Equal(t, "doors", v.Table(1).Name())

	teams, ok := simddb.ViewColumn(v, 1, Team)
	require.True(t, ok)
	require.Len(t, teams, DefaultDoors)
	for _, team := range teams {
		require.Less(t, team, uint32(numTeams))
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{}.Validate())
	require.NoError(t, Config{Players: DefaultPlayers, Doors: DefaultDoors, VectorWidth: 4, CacheLine: 64}.Validate())

	for _, tc := range []struct {
		cfg Config
		err string
	}{
		{Config{Players: 1, Doors: -1}, "invalid doors table: Capacity (-1) must be >= 0"},
		{Config{Players: -2, Doors: 1}, "invalid players table: Capacity (-2) must be >= 0"},
		{Config{VectorWidth: 3}, "invalid players table: VectorWidth (3) must be a power of two <= 1024"},
		{Config{VectorWidth: 2, CacheLine: 64}, "invalid players table: vector width 2 and cache line 64 must hold a 4-byte column"},
		{Config{VectorWidth: 16, CacheLine: 2}, "invalid players table: vector width 16 and cache line 2 must hold a 4-byte column"},
	} {
		err := tc.cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.err)
		// Every configuration Validate rejects is one NewWorld panics on.
		require.Panics(t, func() { NewWorld(tc.cfg) })
	}
}

func BenchmarkOpenDoors(b *testing.B) {
	for _, vw := range []int{16, 32, 64} {
		b.Run(fmt.Sprintf("width=%d", vw), func(b *testing.B) {
			w := NewWorld(Config{Players: DefaultPlayers, Doors: DefaultDoors, VectorWidth: vw})
			w.Generate(rand.New(rand.NewPCG(0, 0)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w.OpenDoors()
			}
		})
	}
}
