package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildLedger records a rename from node i to node targets[i] for every i,
// over a small identity space so chains and cycles both occur.
func buildLedger(targets []int) *Ledger {
	l := New()
	for i, to := range targets {
		port := ""
		if to%3 == 0 {
			port = fmt.Sprintf("out%d", to)
		}
		l.Record(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", to), port)
	}
	return l
}

func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	targets := gen.SliceOfN(8, gen.IntRange(0, 11))

	properties.Property("resolution is idempotent", prop.ForAll(
		func(targets []int, start int) bool {
			l := buildLedger(targets)
			id, port, err := l.Resolve(fmt.Sprintf("n%d", start), "outColor")
			var cycle *CycleError
			if errors.As(err, &cycle) {
				return true
			}
			if err != nil {
				return false
			}
			id2, port2, err := l.Resolve(id, port)
			return err == nil && id2 == id && port2 == port
		},
		targets,
		gen.IntRange(0, 11),
	))

	properties.Property("resolution terminates on an unrenamed identity", prop.ForAll(
		func(targets []int, start int) bool {
			l := buildLedger(targets)
			id, _, err := l.Resolve(fmt.Sprintf("n%d", start), "")
			if err != nil {
				var cycle *CycleError
				return errors.As(err, &cycle)
			}
			for _, e := range l.Entries() {
				if e.Old == id {
					return false
				}
			}
			return true
		},
		targets,
		gen.IntRange(0, 11),
	))

	properties.Property("acyclic chains always resolve", prop.ForAll(
		func(n int) bool {
			l := New()
			for i := 0; i < n; i++ {
				l.Record(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1), "")
			}
			id, _, err := l.Resolve("n0", "")
			return err == nil && id == fmt.Sprintf("n%d", n)
		},
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}
