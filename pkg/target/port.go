package target

import (
	"regexp"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

var componentPort = regexp.MustCompile(`^out(?:Color|Value)([RGBAXYZ])`)

// OutputPort returns the target output a wire reads from. Target nodes
// expose a single output "out"; component plugs such as outColorR or
// outValueX select a channel of it ("out.r", "out.x").
func OutputPort(c scene.Connection) string {
	if m := componentPort.FindStringSubmatch(c.Port); m != nil {
		return "out." + strings.ToLower(m[1])
	}
	return "out"
}

// OutputRef returns "node.out" or "node.out.<channel>" for c.
func OutputRef(c scene.Connection) string {
	return c.Node + "." + OutputPort(c)
}
