// Package scene defines the source side of a conversion: shading network
// nodes as read from the authoring tool, their wires, and the helpers used
// to interpret loosely typed attribute values.
//
// # Values
//
// Scene dumps carry whatever the host reported, so numbers arrive as
// float64 from JSON and as int from YAML, colors as nested single-element
// lists, and booleans as 0/1. [AsFloat], [AsInt], [AsTuple], and [Unwrap]
// normalize these without the caller caring which encoding was used.
//
// # Indexed attributes
//
// Sparse multi-attributes such as ramp entries are flattened into keys of
// the form "colorEntryList[3].position". [ParseIndexed] splits such a key
// back into its array name, index, and field.
//
// # Versions
//
// [Version] holds the host plugin version reported by the source. Schema
// variants and some rewrite hooks compare against it.
package scene
