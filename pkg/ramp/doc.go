// Package ramp converts variable-length ramp control points into the fixed
// array layout target ramps expect.
//
// Source ramps are sparse lists of positioned entries, any of which may be
// driven by a wire. Target ramps take parallel arrays (positions, values,
// interpolation codes) with one extra slot at each end: slot 0 repeats the
// first value at position 0 and the last slot repeats the last value at
// position 1, so the target sampler clamps at the edges without
// special-casing them.
//
// Ramps that cannot be encoded that way degrade to simpler graphs:
//
//   - no entries: the ramp is dropped
//   - one entry: the ramp is replaced by whatever feeds that entry
//   - two entries with wires: a two-input blend driven by a 0..1 ramp
//
// [Classify] reports which case applies; [Encode] builds the layout.
package ramp
