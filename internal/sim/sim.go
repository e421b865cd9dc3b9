// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sim implements a small simulation on top of simddb tables: players
// and doors scattered over a grid, where every frame each door opens if a
// player of the door's team stands within the door's radius. The door scan
// processes whole vectors of doors against every player, the access pattern
// simddb's column layout is designed for.
package sim

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	simddb "github.com/nutax/simd-db"
)

// Column kinds shared by players and doors.
var (
	PositionX = simddb.NewTag[float32]("position-x")
	PositionY = simddb.NewTag[float32]("position-y")
	PositionZ = simddb.NewTag[float32]("position-z")
	Team      = simddb.NewTag[uint32]("team")
)

// Schema markers.
type (
	Players struct{}
	Doors   struct{}
)

const (
	// DefaultPlayers is the default player capacity.
	DefaultPlayers = 30
	// DefaultDoors is the default door capacity.
	DefaultDoors = 100

	// Generated coordinates, radii and teams are drawn from [0, n).
	gridSize  = 5
	maxRadius = 25
	numTeams  = 3
)

// Open is the value of the open column of an open door.
const Open = ^uint32(0)

// Config configures a World.
type Config struct {
	// Players and Doors are the capacities of the two tables.
	Players int
	Doors   int
	// VectorWidth and CacheLine are passed through to simddb.Options; zero
	// selects the defaults of the running CPU.
	VectorWidth int
	CacheLine   int
	Logger      simddb.Logger
}

// columnSize is the element size of every player and door column.
const columnSize = 4

func (cfg Config) tableOptions(name string, capacity int) simddb.Options {
	return simddb.Options{
		Name:        name,
		Capacity:    capacity,
		VectorWidth: cfg.VectorWidth,
		CacheLine:   cfg.CacheLine,
		Logger:      cfg.Logger,
	}
}

// Validate returns an error if NewWorld would reject cfg.
func (cfg Config) Validate() error {
	for _, opts := range []simddb.Options{
		cfg.tableOptions("players", cfg.Players),
		cfg.tableOptions("doors", cfg.Doors),
	} {
		opts.EnsureDefaults()
		if err := opts.Validate(); err != nil {
			return errors.Wrapf(err, "invalid %s table", errors.Safe(opts.Name))
		}
		if opts.VectorWidth < columnSize || opts.CacheLine < columnSize {
			return errors.Errorf("invalid %s table: vector width %d and cache line %d must hold a %d-byte column",
				errors.Safe(opts.Name), opts.VectorWidth, opts.CacheLine, columnSize)
		}
	}
	return nil
}

// World holds the players and doors tables and their fields.
type World struct {
	Players *simddb.Table[Players]
	Doors   *simddb.Table[Doors]

	PlayerX, PlayerY, PlayerZ simddb.Field[Players, float32]
	PlayerTeam                simddb.Field[Players, uint32]
	PlayerOther               simddb.Field[Players, uint32]

	DoorX, DoorY, DoorZ simddb.Field[Doors, float32]
	DoorRadius2         simddb.Field[Doors, float32]
	DoorTeam            simddb.Field[Doors, uint32]
	DoorOpen            simddb.Field[Doors, uint32]
}

// NewWorld returns an empty world. It panics if cfg is invalid; see
// Config.Validate.
func NewWorld(cfg Config) *World {
	w := &World{}

	ps := simddb.NewSchema[Players](cfg.tableOptions("players", cfg.Players))
	w.PlayerX = simddb.AddTagged(ps, PositionX)
	w.PlayerY = simddb.AddTagged(ps, PositionY)
	w.PlayerZ = simddb.AddTagged(ps, PositionZ)
	w.PlayerTeam = simddb.AddTagged(ps, Team)
	w.PlayerOther = simddb.AddColumn[Players, uint32](ps, "other")
	w.Players = ps.NewTable()

	ds := simddb.NewSchema[Doors](cfg.tableOptions("doors", cfg.Doors))
	w.DoorX = simddb.AddTagged(ds, PositionX)
	w.DoorY = simddb.AddTagged(ds, PositionY)
	w.DoorZ = simddb.AddTagged(ds, PositionZ)
	w.DoorRadius2 = simddb.AddColumn[Doors, float32](ds, "radius2")
	w.DoorTeam = simddb.AddTagged(ds, Team)
	w.DoorOpen = simddb.AddColumn[Doors, uint32](ds, "open")
	w.Doors = ds.NewTable()
	return w
}

// View returns a view over the world's tables.
func (w *World) View() *simddb.View {
	return simddb.NewView("world", w.Players, w.Doors)
}

// SpawnPlayer appends a player and returns its row.
func (w *World) SpawnPlayer(x, y, z float32, team uint32) int {
	*w.PlayerX.Slot(w.Players) = x
	*w.PlayerY.Slot(w.Players) = y
	*w.PlayerZ.Slot(w.Players) = z
	*w.PlayerTeam.Slot(w.Players) = team
	*w.PlayerOther.Slot(w.Players) = 0
	return w.Players.Create()
}

// SpawnDoor appends a closed door and returns its row.
func (w *World) SpawnDoor(x, y, z, radius2 float32, team uint32) int {
	*w.DoorX.Slot(w.Doors) = x
	*w.DoorY.Slot(w.Doors) = y
	*w.DoorZ.Slot(w.Doors) = z
	*w.DoorRadius2.Slot(w.Doors) = radius2
	*w.DoorTeam.Slot(w.Doors) = team
	*w.DoorOpen.Slot(w.Doors) = 0
	return w.Doors.Create()
}

// Generate fills both tables to capacity with random players and doors.
func (w *World) Generate(rng *rand.Rand) {
	for w.Players.Len() < w.Players.Cap() {
		w.SpawnPlayer(randCoord(rng), randCoord(rng), randCoord(rng), uint32(rng.IntN(numTeams)))
	}
	for w.Doors.Len() < w.Doors.Cap() {
		w.spawnRandomDoor(rng)
	}
}

// Respawn replaces n random doors with new random doors. It returns the
// number of doors replaced, which is less than n if the world holds fewer
// than n doors.
func (w *World) Respawn(rng *rand.Rand, n int) int {
	n = min(n, w.Doors.Len())
	for i := 0; i < n; i++ {
		w.Doors.Destroy(rng.IntN(w.Doors.Len()))
	}
	for i := 0; i < n; i++ {
		w.spawnRandomDoor(rng)
	}
	return n
}

func (w *World) spawnRandomDoor(rng *rand.Rand) {
	w.SpawnDoor(randCoord(rng), randCoord(rng), randCoord(rng),
		float32(rng.IntN(maxRadius)), uint32(rng.IntN(numTeams)))
}

func randCoord(rng *rand.Rand) float32 {
	return float32(rng.IntN(gridSize))
}

// OpenDoors sets the open column of every door to Open if at least one
// player of the door's team is within the door's radius, and to zero
// otherwise.
//
// Doors are processed one vector at a time: the scan strides by the vector
// step of the door columns and always processes full vectors, reading and
// writing the padding past the last door. The results in the padding are
// meaningless and ignored.
func (w *World) OpenDoors() {
	dx, dy, dz := w.DoorX.Slice(w.Doors), w.DoorY.Slice(w.Doors), w.DoorZ.Slice(w.Doors)
	dr, dt, do := w.DoorRadius2.Slice(w.Doors), w.DoorTeam.Slice(w.Doors), w.DoorOpen.Slice(w.Doors)
	px, py, pz := w.PlayerX.Live(w.Players), w.PlayerY.Live(w.Players), w.PlayerZ.Live(w.Players)
	pt := w.PlayerTeam.Live(w.Players)

	step := w.DoorX.VectorStep()
	n := w.Doors.Len()
	for i := 0; i < n; i += step {
		j := i + step
		vdx, vdy, vdz := dx[i:j:j], dy[i:j:j], dz[i:j:j]
		vdr, vdt, vdo := dr[i:j:j], dt[i:j:j], do[i:j:j]
		vdx, vdy, vdz, vdr, vdt = vdx[:len(vdo)], vdy[:len(vdo)], vdz[:len(vdo)], vdr[:len(vdo)], vdt[:len(vdo)]
		clear(vdo)
		for p := range px {
			x, y, z, team := px[p], py[p], pz[p], pt[p]
			for l := range vdo {
				xd, yd, zd := vdx[l]-x, vdy[l]-y, vdz[l]-z
				dist2 := (xd*xd + yd*yd) + zd*zd
				if dist2 <= vdr[l] && vdt[l] == team {
					vdo[l] |= Open
				}
			}
		}
	}
}

// OpenCount returns the number of open doors.
func (w *World) OpenCount() int {
	var n int
	for _, o := range w.DoorOpen.Live(w.Doors) {
		if o == Open {
			n++
		}
	}
	return n
}

// Centroid returns the mean position over every row of every table of v that
// declares all three position columns, and the number of such rows.
func Centroid(v *simddb.View) (x, y, z float32, n int) {
	var sx, sy, sz float64
	for i := range v.All() {
		xs, okx := simddb.ViewColumn(v, i, PositionX)
		ys, oky := simddb.ViewColumn(v, i, PositionY)
		zs, okz := simddb.ViewColumn(v, i, PositionZ)
		if !okx || !oky || !okz {
			continue
		}
		for r := range xs {
			sx += float64(xs[r])
			sy += float64(ys[r])
			sz += float64(zs[r])
		}
		n += len(xs)
	}
	if n == 0 {
		return 0, 0, 0, 0
	}
	return float32(sx / float64(n)), float32(sy / float64(n)), float32(sz / float64(n)), n
}
