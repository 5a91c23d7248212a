package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a color value is not a valid "r,g,b" triple.
var ErrInvalidColor = errors.New("invalid color triple")

// RGB is a color with 8-bit channels. The canonical document form is the
// comma-joined decimal triple "r,g,b".
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// ParseRGB parses a comma-joined decimal triple like "61,74,80". Whitespace
// around channels is tolerated. Anything else (wrong arity, non-numeric parts,
// channels outside 0..255) returns an error wrapping ErrInvalidColor.
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: %q has %d channels, want 3", ErrInvalidColor, s, len(parts))
	}

	var ch [3]uint8
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q channel %d is not a number", ErrInvalidColor, s, i)
		}
		if n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("%w: %q channel %d out of range 0..255", ErrInvalidColor, s, i)
		}
		ch[i] = uint8(n)
	}

	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// String returns the canonical comma-joined form "r,g,b".
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
