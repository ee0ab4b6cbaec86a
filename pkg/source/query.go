package source

import "github.com/matzehuels/shadebridge/pkg/scene"

// MaterialType is the source type of material root nodes.
const MaterialType = "shadingEngine"

// Query is a read-only view of a source scene.
type Query interface {
	// ListNodesReachableFrom returns root and every node feeding it,
	// directly or through other nodes, in discovery order. The nodes are
	// the caller's to modify.
	ListNodesReachableFrom(root string) ([]*scene.Node, error)

	// Attribute returns the value of one attribute.
	Attribute(node, key string) (any, bool)

	// Connections returns the wired inputs of a node.
	Connections(node string) map[string]scene.Connection

	// HostVersion returns the plugin version the scene was authored with.
	HostVersion() scene.Version
}
