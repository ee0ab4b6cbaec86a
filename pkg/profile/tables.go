package profile

import (
	"io/fs"
	"path"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/schema"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// LoadTables parses every .yaml file in dir of fsys into one set, in file
// name order. A type defined in a later file replaces earlier definitions.
func LoadTables(fsys fs.FS, dir string) (*schema.Set, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "read tables")
	}
	set := schema.NewSet()
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "read %s", e.Name())
		}
		s, err := schema.Parse(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "%s", e.Name())
		}
		set.Merge(s)
	}
	return set, nil
}

// PruneUnwiredPorts is a process for material nodes: it drops every port
// nothing drives and all parameters.
func PruneUnwiredPorts(t *target.Node, _ *scene.Node, _ *mapper.Env) error {
	t.Params = nil
	for _, port := range slices.Clone(t.Ports) {
		if !t.Connected(port) {
			t.RemovePort(port)
		}
	}
	return nil
}

// WeightDisplacement orders displacement folding after other rewrites and
// places the folded node last among its siblings.
const WeightDisplacement = 20

// FoldDisplacement turns a displacement shader into a range node fed by
// whatever drove its displacement input. All other wires are dropped.
func FoldDisplacement(n *scene.Node, _ *PreEnv) ([]*scene.Node, error) {
	n.Type = "range"
	n.Weight = WeightDisplacement
	conns := map[string]scene.Connection{}
	if c, ok := n.Connections["displacement"]; ok {
		conns["input"] = c
	}
	n.Connections = conns
	return []*scene.Node{n}, nil
}
