package tokens

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// NeutralRole is the one base color expanded into the full 22-point ramp.
const NeutralRole = "--now-color--neutral"

// ScaleRoles are the base colors expanded into 4-point ramps. Base keys not
// listed here (and not the neutral role) stay single values.
var ScaleRoles = []string{
	"--now-color--primary",
	"--now-color--secondary",
	"--now-color--interactive",
	"--now-color--link",
	"--now-color--focus",
	"--now-color--critical",
	"--now-color--high",
	"--now-color--moderate",
	"--now-color--low",
	"--now-color--positive",
	"--now-color--info",
}

// Ramp sizes per role kind.
const (
	NeutralScalePoints = 22
	RoleScalePoints    = 4
)

const (
	tintFactor    = 0.43
	shadeMidMul   = 0.80
	shadeDarkMul  = 0.65
	rampWhitePart = 0.5
)

// GenerateScale derives an ordered color ramp from one base color.
//
// points == 4 produces the accent ladder: one tint toward white, the base
// itself, and two darkened steps. Index 1 is the input color bit-for-bit,
// never recomputed, so the ramp always reproduces the supplied color exactly.
//
// Any other count produces the long ramp: index 0 is pure white, the last
// index pure black, and interior entries blend white toward the base over the
// first half and the base toward black over the second, so the base acts as
// the ramp midpoint. points < 2 returns nil; callers only use 4 and 22.
func GenerateScale(base RGB, points int) []RGB {
	if points < 2 {
		return nil
	}

	if points == RoleScalePoints {
		return []RGB{
			tint(base, tintFactor),
			base,
			shade(base, shadeMidMul),
			shade(base, shadeDarkMul),
		}
	}

	scale := make([]RGB, points)
	scale[0] = RGB{R: 255, G: 255, B: 255}
	scale[points-1] = RGB{}
	for i := 1; i < points-1; i++ {
		t := float64(i) / float64(points-1)
		if t < rampWhitePart {
			f := t / rampWhitePart
			scale[i] = RGB{
				R: roundChannel(255 + (float64(base.R)-255)*f),
				G: roundChannel(255 + (float64(base.G)-255)*f),
				B: roundChannel(255 + (float64(base.B)-255)*f),
			}
		} else {
			f := (t - rampWhitePart) / (1 - rampWhitePart)
			scale[i] = RGB{
				R: roundChannel(float64(base.R) * (1 - f)),
				G: roundChannel(float64(base.G) * (1 - f)),
				B: roundChannel(float64(base.B) * (1 - f)),
			}
		}
	}

	return scale
}

func tint(c RGB, f float64) RGB {
	return RGB{
		R: roundChannel(float64(c.R) + (255-float64(c.R))*f),
		G: roundChannel(float64(c.G) + (255-float64(c.G))*f),
		B: roundChannel(float64(c.B) + (255-float64(c.B))*f),
	}
}

func shade(c RGB, mul float64) RGB {
	return RGB{
		R: roundChannel(float64(c.R) * mul),
		G: roundChannel(float64(c.G) * mul),
		B: roundChannel(float64(c.B) * mul),
	}
}

func roundChannel(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// ExpandScales walks base for recognized color roles and inserts their ramps
// as "{role}-{index}" entries, mutating base in place. Absent roles are
// skipped. A present role whose value does not parse as a color triple aborts
// only that role's ramp; the returned error joins one error per failed role
// and the count covers the entries actually added.
func ExpandScales(base map[string]string) (int, error) {
	added := 0
	var errs []error

	expand := func(role string, points int) {
		raw, ok := base[role]
		if !ok {
			return
		}
		c, err := ParseRGB(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("role %s: %w", role, err))
			return
		}
		for i, v := range GenerateScale(c, points) {
			base[role+"-"+strconv.Itoa(i)] = v.String()
			added++
		}
	}

	expand(NeutralRole, NeutralScalePoints)
	for _, role := range ScaleRoles {
		expand(role, RoleScalePoints)
	}

	return added, errors.Join(errs...)
}
