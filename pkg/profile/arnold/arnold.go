// Package arnold converts shading networks for the Arnold renderer.
//
// The mapping tables live in tables/*.yaml and are embedded at build time.
// Hooks restructure the source types that have no one-to-one Arnold
// counterpart: ramps, bumps, sampler info, file textures, displacement,
// arithmetic and shading groups.
package arnold

import (
	"embed"

	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/schema"
)

//go:embed tables/*.yaml
var tables embed.FS

// Preprocess weights. Bumps become space transforms before displacement
// nodes are folded away, and both before materials are finalized.
const (
	WeightBump         = 10
	WeightDisplacement = profile.WeightDisplacement
)

// Renderer registers Arnold with the renderer list.
var Renderer = profile.Renderer{
	Name:     "arnold",
	Prefixes: []string{"ai", "al"},
	New:      New,
}

// New builds the Arnold profile.
func New(opts profile.Options) (*profile.Profile, error) {
	set, err := Tables()
	if err != nil {
		return nil, err
	}
	p := &profile.Profile{
		Name:         "arnold",
		Capabilities: capabilities(),
		Schemas:      set,
		Funcs:        funcs(opts),
		Options:      opts,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Tables parses the embedded mapping tables.
func Tables() (*schema.Set, error) {
	return profile.LoadTables(tables, "tables")
}

func capabilities() map[string]profile.Capability {
	return map[string]profile.Capability{
		"displacementShader": {Weight: WeightDisplacement, Preprocess: profile.FoldDisplacement},
		"bump2d":             {Weight: WeightBump, Preprocess: preprocessBump},
		"samplerInfo":        {Preprocess: preprocessSampler},
		"aiImage":            {Preprocess: preprocessImage},
		"file":               {Preprocess: preprocessFile},
		"multiplyDivide":     {Preprocess: preprocessMultiplyDivide},
		"ramp":               {Preprocess: preprocessRamp},
		"shadingEngine": {
			Preprocess:  preprocessNetworkMaterial,
			Postprocess: postprocessNetworkMaterial,
		},

		"aiStandard":          {Type: "standard"},
		"aiStandardSurface":   {Type: "standard_surface"},
		"aiVolumeCollector":   {Type: "volume_collector"},
		"aiVolumeSampleFloat": {Type: "volume_sample_float"},
		"aiVolumeSampleRgb":   {Type: "volume_sample_rgb"},
		"aiAmbientOcclusion":  {Type: "ambientOcclusion"},
		"aiNoise":             {Type: "noise"},
		"aiUserDataFloat":     {Type: "user_data_float"},
		"aiUserDataColor":     {Type: "user_data_rgb"},
		"aiWriteFloat":        {Type: "aov_write_float"},
		"aiWriteColor":        {Type: "aov_write_rgb"},
		"aiColorCorrect":      {Type: "color_correct"},
		"aiNormalMap":         {Type: "normal_map"},
		"aiBump2d":            {Type: "bump2d_ar5"},
		"aiMultiply":          {Type: "multiply"},
		"aiDivide":            {Type: "divide"},
		"aiPow":               {Type: "pow"},
		"blendColors":         {Type: "mix_rgba"},
	}
}

func funcs(opts profile.Options) mapper.Funcs {
	return mapper.Funcs{
		Overrides: map[string]mapper.OverrideFunc{
			"clamp":    overrideClamp,
			"hair":     overrideHair,
			"material": overrideMaterial,
			"tx":       overrideTexturePath(opts.RewriteTx),
		},
		Processes: map[string]mapper.ProcessFunc{
			"ramp":            processRamp,
			"networkMaterial": profile.PruneUnwiredPorts,
		},
	}
}
