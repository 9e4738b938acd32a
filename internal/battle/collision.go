package battle

import (
	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
)

// collisionBatchSize is how many ship circles are gathered into the
// lane-aligned scratch arrays per pass.
const collisionBatchSize = 256

// collisionBatch is the scratch block the batched intersect kernel runs
// over: structure-of-arrays circles plus the mobs they came from.
type collisionBatch struct {
	x [collisionBatchSize]float32
	y [collisionBatchSize]float32
	r [collisionBatchSize]float32
	m [collisionBatchSize]*mob.Mob
	n int
}

// checkMobCollision is the scalar collision test: owner exclusion plus
// bounding-circle overlap. oMob must be live ammo, iMob a ship.
func checkMobCollision(oMob *mob.Mob, oc geom.Circle, iMob *mob.Mob) bool {
	if oMob.Type != mob.TypePowerCore && oMob.PlayerID == iMob.PlayerID {
		// Players don't collide with themselves.
		return false
	}
	if !iMob.Alive {
		return false
	}
	return oc.Intersects(iMob.Circle())
}

// powerCoreDropCredits is the value of the core a dying mob leaves
// behind; missiles and cores drop nothing.
func (b *Battle) powerCoreDropCredits(m *mob.Mob) int {
	if m.Type == mob.TypeMissile || m.Type == mob.TypePowerCore {
		return 0
	}
	return int(b.scenario.Params.PowerCoreDropRate * float32(m.Type.Cost()))
}

// runMobCollision applies one ammo-vs-ship collision: cores transfer
// their credits, everything else exchanges damage, and a destroyed ship
// drops a neutral power core worth a fraction of its cost.
func (b *Battle) runMobCollision(oMob, iMob *mob.Mob) {
	b.status.Collisions++

	if oMob.Type == mob.TypePowerCore {
		b.status.Players[iMob.PlayerID].Credits += oMob.PowerCoreCredits
		oMob.Alive = false
		return
	}
	if iMob.Type == mob.TypePowerCore {
		b.status.Players[oMob.PlayerID].Credits += iMob.PowerCoreCredits
		iMob.Alive = false
		return
	}

	oMob.Health -= iMob.Type.MaxHealth()
	iMob.Health -= oMob.Type.MaxHealth()

	for _, m := range [2]*mob.Mob{oMob, iMob} {
		if m.Health > 0 {
			continue
		}
		m.Alive = false
		if credits := b.powerCoreDropCredits(m); credits > 0 {
			spawn := b.queueSpawn(m.ID, mob.TypePowerCore, mob.NeutralPlayer, m.Pos)
			spawn.PowerCoreCredits = credits
		}
	}
}

// collideBatch tests one live ammo mob against a gathered ship batch,
// 8 lanes at a time with a scalar tail. Identical semantics on both
// paths. Returns early once the ammo mob dies.
func (b *Battle) collideBatch(oMob *mob.Mob, batch *collisionBatch) {
	oc := oMob.Circle()
	oPlayer := oMob.PlayerID

	inner := 0
	for inner+geom.Lanes < batch.n {
		var lanes geom.LaneBlock
		copy(lanes.X[:], batch.x[inner:inner+geom.Lanes])
		copy(lanes.Y[:], batch.y[inner:inner+geom.Lanes])
		copy(lanes.R[:], batch.r[inner:inner+geom.Lanes])
		mask := geom.IntersectLanes(oc.Center.X, oc.Center.Y, oc.Radius, &lanes)

		for i := 0; i < geom.Lanes; i++ {
			iMob := batch.m[inner+i]
			if mask&(1<<i) != 0 && iMob.Alive &&
				(oMob.Type == mob.TypePowerCore || oPlayer != iMob.PlayerID) {
				b.runMobCollision(oMob, iMob)
				if !oMob.Alive {
					// A dead ammo mob can't collide with anything else.
					return
				}
			}
		}
		inner += geom.Lanes
	}

	for inner < batch.n {
		iMob := batch.m[inner]
		if checkMobCollision(oMob, oc, iMob) {
			b.runMobCollision(oMob, iMob)
			if !oMob.Alive {
				return
			}
		}
		inner++
	}
}

// runCollisions partitions the live mobs into ammo and ships and
// resolves every ammo-vs-ship overlap.
func (b *Battle) runCollisions() {
	size := len(b.mobs)

	i := 0
	for i < size {
		var batch collisionBatch
		for batch.n < collisionBatchSize && i < size {
			iMob := b.mobs[i]
			if !iMob.IsAmmo() {
				batch.x[batch.n] = iMob.Pos.X
				batch.y[batch.n] = iMob.Pos.Y
				batch.r[batch.n] = iMob.Type.Radius()
				batch.m[batch.n] = iMob
				batch.n++
			}
			i++
		}

		for _, oMob := range b.mobs {
			if !oMob.IsAmmo() || !oMob.Alive {
				continue
			}
			b.collideBatch(oMob, &batch)
		}
	}
}
