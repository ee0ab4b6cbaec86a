// Package source reads shading networks from the authoring tool.
//
// # Query
//
// The conversion engine never talks to a live scene directly. It reads
// through [Query], a read-only view exposing the nodes upstream of a
// material, their attributes and wires, and the host plugin version that
// selects between mapping table variants.
//
// # Snapshots
//
// [Snapshot] implements Query over a scene dump written by the host-side
// exporter. Dumps are JSON or YAML documents of the form:
//
//	host_version: "4.2.1"
//	nodes:
//	  - id: aiStandardSurface1SG
//	    type: shadingEngine
//	    connections:
//	      surfaceShader: {node: aiStandardSurface1, port: outColor}
//	  - id: aiStandardSurface1
//	    type: aiStandardSurface
//	    attributes:
//	      base: 0.8
//	      baseColor: [[0.5, 0.5, 0.5]]
//
// Use [LoadSnapshot] for files (the format follows the extension) or
// [ReadSnapshot] for any io.Reader. Materials are the shadingEngine nodes
// listed by [Snapshot.Roots].
//
// # Concurrency
//
// A loaded Snapshot is immutable. Every query returns copies, so several
// conversion runs may read the same snapshot concurrently.
package source
