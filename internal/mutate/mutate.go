// Package mutate implements the registry mutation operators used during
// population evolution. Operators read and write string values through
// the registry so any controller's parameter space can be evolved
// without the driver understanding the keys.
package mutate

import (
	"strconv"

	"spacerobots2/internal/random"
	"spacerobots2/internal/registry"
)

// FloatParams describes how one float key mutates: its legal range, the
// relative step magnitude, the chance of a random jump, and the overall
// mutation rate.
type FloatParams struct {
	Key          string
	Min          float32
	Max          float32
	Magnitude    float32
	JumpRate     float32
	MutationRate float32
}

// BoolParams describes how one bool key mutates.
type BoolParams struct {
	Key      string
	FlipRate float32
}

// StrParams describes how one string key mutates by re-rolling among
// fixed options.
type StrParams struct {
	Key      string
	FlipRate float32
}

// Float mutates each listed key with its configured probability: a
// missing key or a jump re-rolls uniformly; otherwise the value either
// scales by the magnitude or walks by a magnitude-sized slice of the
// range. Results clamp to [Min, Max].
func Float(reg *registry.Registry, rng *random.Rand, params []FloatParams) {
	for i := range params {
		mp := &params[i]
		if !rng.Flip(mp.MutationRate) {
			continue
		}

		value := reg.GetFloat(mp.Key)
		if !reg.Contains(mp.Key) || rng.Flip(mp.JumpRate) {
			value = rng.FloatRange(mp.Min, mp.Max)
		} else if rng.Bit() {
			if rng.Bit() {
				value *= 1.0 - mp.Magnitude
			} else {
				value *= 1.0 + mp.Magnitude
			}
		} else {
			rang := mp.Max - mp.Min
			if rang < 0 {
				rang = -rang
			}
			rang = rng.FloatRange(rang*(1.0-mp.Magnitude), rang*(1.0+mp.Magnitude))
			if rng.Bit() {
				value += mp.Magnitude * rang
			} else {
				value -= mp.Magnitude * rang
			}
		}

		if value < mp.Min {
			value = mp.Min
		}
		if value > mp.Max {
			value = mp.Max
		}
		reg.Put(mp.Key, strconv.FormatFloat(float64(value), 'f', 6, 32))
	}
}

// Bool flips each listed key with its configured probability; a missing
// key gets a random value.
func Bool(reg *registry.Registry, rng *random.Rand, params []BoolParams) {
	for i := range params {
		mp := &params[i]
		if !rng.Flip(mp.FlipRate) {
			continue
		}

		var value bool
		if reg.Contains(mp.Key) {
			value = !reg.GetBool(mp.Key)
		} else {
			value = rng.Bit()
		}
		reg.PutBool(mp.Key, value)
	}
}

// Str re-rolls each listed key among options with its configured
// probability.
func Str(reg *registry.Registry, rng *random.Rand, params []StrParams, options []string) {
	if len(options) == 0 {
		panic("mutate: no options")
	}
	for i := range params {
		mp := &params[i]
		if rng.Flip(mp.FlipRate) {
			reg.Put(mp.Key, options[rng.Int(0, len(options)-1)])
		}
	}
}
