// Package sprite renders the mob sprite sheet used by the external
// display frontend. The simulator itself never draws; this exists for
// the --dumpPNG pipeline and as the reference for how mobs look.
package sprite

import (
	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"spacerobots2/internal/mob"
)

// tileSize is the square cell one sprite occupies in the sheet.
const tileSize = 100

// playerColors are the render colors by player slot; slot 0 is the
// neutral grey.
var playerColors = []struct{ r, g, b float64 }{
	{0.6, 0.6, 0.6},
	{0.9, 0.2, 0.2},
	{0.2, 0.4, 0.9},
	{0.2, 0.8, 0.3},
	{0.9, 0.8, 0.2},
	{0.7, 0.3, 0.9},
	{0.9, 0.5, 0.2},
	{0.3, 0.8, 0.8},
}

var sheetTypes = []mob.Type{
	mob.TypeBase,
	mob.TypeFighter,
	mob.TypeMissile,
	mob.TypePowerCore,
}

// DumpPNG writes the full sprite sheet: one row per player color, one
// column per mob type, each tile a filled body circle, plus a heading
// tick for types that move and a faint sensor ring for types that scan.
func DumpPNG(path string) error {
	w := tileSize * len(sheetTypes)
	h := tileSize * len(playerColors)
	dc := gg.NewContext(w, h)

	dc.SetRGB(0.05, 0.05, 0.08)
	dc.Clear()

	for row, color := range playerColors {
		for col, t := range sheetTypes {
			drawTile(dc, col*tileSize, row*tileSize, t, color.r, color.g, color.b)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "sprite: save %s", path)
	}
	return nil
}

// drawTile renders one mob sprite into its cell.
func drawTile(dc *gg.Context, x, y int, t mob.Type, r, g, b float64) {
	cx := float64(x) + tileSize/2
	cy := float64(y) + tileSize/2

	// Body radius scaled so a base fills most of the tile.
	scale := (tileSize / 2.0 * 0.8) / float64(mob.TypeBase.Radius())
	body := float64(t.Radius()) * scale
	if body < 3 {
		body = 3
	}

	if sensor := t.SensorRadius(); sensor > 0 {
		ring := body + 8
		dc.SetRGBA(r, g, b, 0.15)
		dc.SetLineWidth(2)
		dc.DrawCircle(cx, cy, ring)
		dc.Stroke()
	}

	dc.SetRGB(r, g, b)
	dc.DrawCircle(cx, cy, body)
	dc.Fill()

	// Heading tick so the frontend can show orientation.
	if t.Speed() > 0 {
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(2)
		dc.DrawLine(cx, cy, cx+body, cy)
		dc.Stroke()
	}
}
