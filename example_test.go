// Copyright (c) 2026 The reana authors
//
// MIT License

package reana_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/reana-spl/reana"
	"github.com/reana-spl/reana/checker"
	"github.com/reana-spl/reana/rdg"
)

const parallel = `
root: R
nodes:
  - id: R
    expression: X + Y - X*Y
    children: [X, Y]
  - id: X
    presence: B
    expression: "0.9"
  - id: Y
    presence: C
    expression: "0.9"
`

// This example computes the family reliability of a product line with two
// redundant components, X and Y, enabled by the optional features B and C. At
// least one of them must be selected.
func Example() {
	ctx := context.Background()
	a, err := reana.NewAnalyzer(strings.NewReader("A && (B || C)"), checker.Precomputed{})
	if err != nil {
		log.Fatal(err)
	}
	root, err := rdg.NewYAMLBuilder(a.Solver()).Build(ctx, strings.NewReader(parallel))
	if err != nil {
		log.Fatal(err)
	}
	rel, err := a.EvaluateReliability(ctx, root)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Number of valid configurations: %s\n", a.ValidConfigurations())
	for _, conf := range []string{"A B", "A C", "A B C", "A", "B C"} {
		env := map[string]bool{}
		for _, f := range strings.Fields(conf) {
			env[f] = true
		}
		fmt.Printf("%-6s %.4f\n", conf, a.Manager().Eval(rel, env))
	}
	// Output:
	// Number of valid configurations: 3
	// A B    0.9000
	// A C    0.9000
	// A B C  0.9900
	// A      0.0000
	// B C    0.0000
}
