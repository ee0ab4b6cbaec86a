// Package schema holds the declarative attribute mapping tables that tell
// the mapper how each source node type becomes a target node.
//
// # Table format
//
// Tables are YAML documents keyed by target node type. Each entry maps a
// source attribute key to one of:
//
//	specularRoughness: ~                      # passthrough, same name
//	KsColor: Ks_color                         # rename
//	sssMode: [cubic, diffusion, empirical]    # enum, same name
//	specularDistribution: [specular_distribution, [beckmann, ggx]]
//	min: !override clamp                      # value transform by name
//	Kd:                                       # group: Kd itself plus children
//	  color: Kd_color
//
// Two keys are reserved at table level: customColor ([r, g, b] node
// color, not an attribute) and customProcess (name of a finalization
// function run after the declarative entries).
//
// Top-level keys starting with "." are not tables. They exist to hold
// YAML anchors shared between tables, such as a common enum label list.
//
// # Host version variants
//
// A table key may carry a version constraint, "networkMaterial@<2.0" or
// "image@>=3.1". [Set.Lookup] picks the first constrained variant whose
// constraint the host version satisfies, falling back to the
// unconstrained table.
package schema
