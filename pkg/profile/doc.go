// Package profile defines the per-renderer registry that drives a
// conversion.
//
// A [Profile] maps source node types to a [Capability]: an optional type
// override, an optional preprocess hook with its weight, and an optional
// postprocess hook. Alongside it sit the schema tables and the named
// override and process functions those tables reference. A source type
// with no capability and no table is opaque: it takes part in renaming
// but never reaches the output.
//
// Renderer packages (arnold, prman) each export a [Renderer] whose New
// builds the profile. Package renderers lists them; it exists so that
// this package does not import its implementations.
//
// # Hooks
//
// Hooks are plain functions registered by type. The engine never calls a
// hook by name and hooks never call each other; ordering between related
// rewrites is expressed only through Weight.
package profile
