package ramp

import "github.com/matzehuels/shadebridge/pkg/scene"

// Target interpolation codes.
const (
	InterpConstant = 0
	InterpLinear   = 1
	// InterpCustom is used for source modes with no target equivalent.
	InterpCustom = 2
	InterpSmooth = 3
)

// Source interpolation modes, as numbered by the authoring tool.
var sourceInterp = map[int]string{
	0: "none",
	1: "linear",
	2: "exponentialUp",
	3: "exponentialDown",
	4: "smooth",
	5: "bump",
	6: "spike",
}

var interpCodes = map[string]int{
	"none":     InterpConstant,
	"constant": InterpConstant,
	"step":     InterpConstant,
	"linear":   InterpLinear,
	"smooth":   InterpSmooth,
}

// Interpolation translates a source interpolation mode, given as the
// authoring tool's integer or as a label, to a target code. Modes without
// an equivalent yield InterpCustom and false.
func Interpolation(v any) (int, bool) {
	label, ok := scene.AsString(v)
	if !ok {
		i, isInt := scene.AsInt(v)
		if !isInt {
			return InterpCustom, false
		}
		label = sourceInterp[i]
	}
	code, ok := interpCodes[label]
	if !ok {
		return InterpCustom, false
	}
	return code, true
}

// TypeCustom is the ramp type driven by an explicit input wire.
const TypeCustom = "custom"

var rampTypes = []string{"v", "u", "diagonal", "radial", "circular", "box"}

// Type translates a source ramp type to the target name. Unknown types
// yield TypeCustom and false.
func Type(v any) (string, bool) {
	if s, ok := scene.AsString(v); ok {
		for _, t := range rampTypes {
			if t == s {
				return t, true
			}
		}
		return TypeCustom, false
	}
	i, ok := scene.AsInt(v)
	if !ok || i < 0 || i >= len(rampTypes) {
		return TypeCustom, false
	}
	return rampTypes[i], true
}

// CoordPort returns the source coordinate attribute that drives a "u" or
// "v" ramp, or "" for other types.
func CoordPort(rampType string) string {
	switch rampType {
	case "u":
		return "uCoord"
	case "v":
		return "vCoord"
	}
	return ""
}
