/*
Package dsl provides a fluent Go DSL for programmatically constructing causal graphs.

It is the hand-written counterpart of adjacency.Build: instead of thresholding a
coefficient matrix, the caller declares variables and their causal links
directly. This is useful for encoding domain knowledge, for unit tests and for
graphs that are later compared against a discovered structure.

Example usage:

	package main

	import (
		"fmt"

		"github.com/aretw0/causalgraph/pkg/dot"
		"github.com/aretw0/causalgraph/pkg/dsl"
	)

	func main() {
		b := dsl.New("wages")

		b.Add("education").Causes("income", 0.8)
		b.Add("age").Causes("education", 0.2).Causes("income", 0.1)
		b.Add("income")

		g, err := b.Build()
		if err != nil {
			panic(err)
		}
		fmt.Println(dot.Render(g))
	}
*/
package dsl
