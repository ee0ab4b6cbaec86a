// Package renderers provides the complete list of supported target
// renderers.
//
// This package exists to break import cycles: the renderer packages
// (arnold, prman) import pkg/profile, so pkg/profile cannot import them
// back. Consumers that need the full list import this package.
package renderers

import (
	"slices"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/profile/arnold"
	"github.com/matzehuels/shadebridge/pkg/profile/prman"
	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Auto selects the renderer from the scene.
const Auto = "auto"

// All is the canonical list of supported renderers. The first entry is
// the fallback when detection finds nothing.
var All = []profile.Renderer{
	arnold.Renderer,
	prman.Renderer,
}

// Names returns the renderer names in registration order.
func Names() []string {
	out := make([]string, len(All))
	for i, r := range All {
		out[i] = r.Name
	}
	return out
}

// Find returns the renderer with the given name.
func Find(name string) (profile.Renderer, bool) {
	i := slices.IndexFunc(All, func(r profile.Renderer) bool { return r.Name == name })
	if i < 0 {
		return profile.Renderer{}, false
	}
	return All[i], true
}

// Detect picks the renderer whose shader prefixes match the most node
// types in nodes. Ties go to the earlier renderer in All, and a scene with
// no match falls back to All[0].
func Detect(nodes []*scene.Node) profile.Renderer {
	best, bestHits := All[0], 0
	for _, r := range All {
		hits := 0
		for _, n := range nodes {
			if r.Matches(n.Type) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = r, hits
		}
	}
	return best
}

// Resolve builds the profile for name. Auto or an empty name detects the
// renderer from nodes.
func Resolve(name string, nodes []*scene.Node, opts profile.Options) (*profile.Profile, error) {
	var r profile.Renderer
	switch name {
	case "", Auto:
		r = Detect(nodes)
	default:
		var ok bool
		if r, ok = Find(name); !ok {
			return nil, errors.New(errors.ErrCodeUnknownRenderer, "unknown renderer %q (available: %v)", name, Names())
		}
	}
	return r.New(opts)
}
