package battle

import (
	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
)

// scanBatchSize is how many target circles are gathered per scanning
// pass.
const scanBatchSize = 256

// canMobScan reports whether a mob places scan bits at all: power cores
// have no sensors and dead mobs don't scan.
func canMobScan(m *mob.Mob) bool {
	if m.Type == mob.TypePowerCore {
		return false
	}
	return m.Alive
}

// scanBatch marks every target in the gathered batch that the scanner's
// sensor circle touches. Self-player hits are marked here too; the
// caller clears own-player bits after the full pass so downstream
// dispatch never sees a player scanning itself.
func (b *Battle) scanBatch(oMob *mob.Mob, xs, ys, rs []float32, targets []*mob.Mob) {
	sc := oMob.SensorCircle()
	oPlayer := oMob.PlayerID
	n := len(targets)

	inner := 0
	for inner+geom.Lanes < n {
		var lanes geom.LaneBlock
		copy(lanes.X[:], xs[inner:inner+geom.Lanes])
		copy(lanes.Y[:], ys[inner:inner+geom.Lanes])
		copy(lanes.R[:], rs[inner:inner+geom.Lanes])
		mask := geom.IntersectLanes(sc.Center.X, sc.Center.Y, sc.Radius, &lanes)

		for i := 0; i < geom.Lanes; i++ {
			if mask&(1<<i) != 0 {
				targets[inner+i].SetScannedBy(oPlayer)
				b.status.SensorContacts++
			}
		}
		inner += geom.Lanes
	}

	for inner < n {
		iMob := targets[inner]
		if !iMob.ScannedByPlayer(oPlayer) &&
			geom.IntersectScalar(sc.Center.X, sc.Center.Y, sc.Radius,
				xs[inner], ys[inner], rs[inner]) {
			iMob.SetScannedBy(oPlayer)
			b.status.SensorContacts++
		}
		inner++
	}
}

// runScanning runs every scanner's sensor circle over every live mob
// and records the results in the per-mob scannedBy bitmaps.
func (b *Battle) runScanning() {
	size := len(b.mobs)

	var (
		xs [scanBatchSize]float32
		ys [scanBatchSize]float32
		rs [scanBatchSize]float32
		ms [scanBatchSize]*mob.Mob
	)

	i := 0
	for i < size {
		n := 0
		for n < scanBatchSize && i < size {
			iMob := b.mobs[i]
			if iMob.Alive {
				xs[n] = iMob.Pos.X
				ys[n] = iMob.Pos.Y
				rs[n] = iMob.Type.Radius()
				ms[n] = iMob
				n++
			}
			i++
		}

		for _, oMob := range b.mobs {
			if !canMobScan(oMob) {
				continue
			}
			b.scanBatch(oMob, xs[:n], ys[:n], rs[:n], ms[:n])
		}
	}

	// Players never scan themselves; clearing it here keeps the
	// dispatch layer from having to special-case the owner bit.
	for _, m := range b.mobs {
		m.ClearScannedBy(m.PlayerID)
	}
}
