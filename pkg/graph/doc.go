// Package graph provides the serialized form of a converted shading
// network.
//
// This package defines the wire format used for JSON output, the
// conversion cache, and every emitter. It sits at the boundary between
// the in-memory working graph of a run and the outside world:
//
//   - [Graph], [Node], [Param]: serialization types (this package)
//   - pkg/target.Node: the in-memory node a run produces
//
// Use [FromNodes] and [Graph.Targets] to convert between them.
//
// # Format
//
//	{
//	  "renderer": "arnold",
//	  "root": "aiStandardSurface1SG",
//	  "nodes": [
//	    {
//	      "id": "aiStandardSurface1_mtl",
//	      "type": "networkMaterial",
//	      "ports": ["arnoldSurface"],
//	      "connections": {"arnoldSurface": {"node": "aiStandardSurface1_out", "port": "outColor"}}
//	    }
//	  ],
//	  "renames": [{"old": "aiStandardSurface1", "new": "aiStandardSurface1_out"}]
//	}
//
// Parameters keep the tree shape of the mapping table. Array parameters
// carry their elements flattened, tuple_size components each.
//
// # Layout
//
// [Arrange] places nodes for node-graph editors: every node sits one row
// below the first node it feeds, and sibling subtrees are packed side by
// side. See [Layout].
package graph
