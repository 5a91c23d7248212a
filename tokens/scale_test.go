package tokens

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateScaleFourPoint(t *testing.T) {
	t.Parallel()

	base := RGB{R: 61, G: 74, B: 80}
	got := GenerateScale(base, 4)
	want := []RGB{
		{R: 144, G: 152, B: 155},
		{R: 61, G: 74, B: 80},
		{R: 49, G: 59, B: 64},
		{R: 40, G: 48, B: 52},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GenerateScale(%v, 4) = %v, want %v", base, got, want)
	}
}

func TestGenerateScaleIndexOneIsExactBase(t *testing.T) {
	t.Parallel()

	tests := []RGB{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 1, G: 2, B: 3},
		{R: 127, G: 128, B: 129},
		{R: 61, G: 74, B: 80},
		{R: 254, G: 1, B: 128},
	}
	for _, base := range tests {
		scale := GenerateScale(base, 4)
		if len(scale) != 4 {
			t.Fatalf("GenerateScale(%v, 4) has %d entries, want 4", base, len(scale))
		}
		if scale[1] != base {
			t.Fatalf("GenerateScale(%v, 4)[1] = %v, want exact base", base, scale[1])
		}
	}
}

func TestGenerateScaleNeutralEndpoints(t *testing.T) {
	t.Parallel()

	tests := []RGB{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 61, G: 74, B: 80},
		{R: 200, G: 30, B: 90},
	}
	white := RGB{R: 255, G: 255, B: 255}
	black := RGB{}
	for _, base := range tests {
		scale := GenerateScale(base, 22)
		if len(scale) != 22 {
			t.Fatalf("GenerateScale(%v, 22) has %d entries, want 22", base, len(scale))
		}
		if scale[0] != white {
			t.Fatalf("GenerateScale(%v, 22)[0] = %v, want pure white", base, scale[0])
		}
		if scale[21] != black {
			t.Fatalf("GenerateScale(%v, 22)[21] = %v, want pure black", base, scale[21])
		}
	}
}

func TestGenerateScaleDeterministic(t *testing.T) {
	t.Parallel()

	base := RGB{R: 98, G: 121, B: 184}
	for _, points := range []int{4, 22} {
		first := GenerateScale(base, points)
		second := GenerateScale(base, points)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("GenerateScale(%v, %d) not deterministic: %v vs %v", base, points, first, second)
		}
	}
}

func TestGenerateScaleMidpointAnchorsBase(t *testing.T) {
	t.Parallel()

	// 22 points has no exact t=0.5 index, so check a ramp that does.
	base := RGB{R: 61, G: 74, B: 80}
	scale := GenerateScale(base, 21)
	if scale[10] != base {
		t.Fatalf("GenerateScale(%v, 21)[10] = %v, want base at midpoint", base, scale[10])
	}
}

func TestGenerateScaleTooFewPoints(t *testing.T) {
	t.Parallel()

	if got := GenerateScale(RGB{R: 10, G: 20, B: 30}, 1); got != nil {
		t.Fatalf("GenerateScale(_, 1) = %v, want nil", got)
	}
}

func TestExpandScalesCounts(t *testing.T) {
	t.Parallel()

	base := map[string]string{
		NeutralRole:            "61,74,80",
		"--now-color--primary": "61,74,80",
	}
	added, err := ExpandScales(base)
	if err != nil {
		t.Fatalf("ExpandScales() unexpected error: %v", err)
	}
	if added != 26 {
		t.Fatalf("ExpandScales() added %d entries, want 26", added)
	}
	if got := base["--now-color--primary-0"]; got != "144,152,155" {
		t.Fatalf("primary-0 = %q, want %q", got, "144,152,155")
	}
	if got := base["--now-color--primary-1"]; got != "61,74,80" {
		t.Fatalf("primary-1 = %q, want %q", got, "61,74,80")
	}
	if got := base["--now-color--primary-3"]; got != "40,48,52" {
		t.Fatalf("primary-3 = %q, want %q", got, "40,48,52")
	}
	if got := base[NeutralRole+"-0"]; got != "255,255,255" {
		t.Fatalf("neutral-0 = %q, want %q", got, "255,255,255")
	}
	if got := base[NeutralRole+"-21"]; got != "0,0,0" {
		t.Fatalf("neutral-21 = %q, want %q", got, "0,0,0")
	}
}

func TestExpandScalesSkipsAbsentRoles(t *testing.T) {
	t.Parallel()

	base := map[string]string{"--now-color--primary": "10,20,30"}
	added, err := ExpandScales(base)
	if err != nil {
		t.Fatalf("ExpandScales() unexpected error: %v", err)
	}
	if added != 4 {
		t.Fatalf("ExpandScales() added %d entries, want 4", added)
	}
	if len(base) != 5 {
		t.Fatalf("base has %d entries, want 5", len(base))
	}
}

func TestExpandScalesIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	base := map[string]string{
		"--now-color--background": "10,20,30",
		"--now-color--primary":    "10,20,30",
	}
	added, err := ExpandScales(base)
	if err != nil {
		t.Fatalf("ExpandScales() unexpected error: %v", err)
	}
	if added != 4 {
		t.Fatalf("ExpandScales() added %d entries, want 4", added)
	}
	if _, ok := base["--now-color--background-0"]; ok {
		t.Fatal("unrecognized key was expanded")
	}
}

func TestExpandScalesMalformedRoleIsolated(t *testing.T) {
	t.Parallel()

	base := map[string]string{
		"--now-color--primary":   "not-a-color",
		"--now-color--secondary": "61,74,80",
	}
	added, err := ExpandScales(base)
	if err == nil {
		t.Fatal("ExpandScales() expected error for malformed role")
	}
	if !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("ExpandScales() error = %v, want ErrInvalidColor", err)
	}
	if !strings.Contains(err.Error(), "--now-color--primary") {
		t.Fatalf("error %q does not name the failing role", err)
	}
	if added != 4 {
		t.Fatalf("ExpandScales() added %d entries, want 4 from the healthy role", added)
	}
	if _, ok := base["--now-color--primary-0"]; ok {
		t.Fatal("malformed role still produced ramp entries")
	}
	if got := base["--now-color--secondary-1"]; got != "61,74,80" {
		t.Fatalf("secondary-1 = %q, want %q", got, "61,74,80")
	}
}
