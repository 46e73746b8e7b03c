/*
Package causalgraph connects causal structure discovery to effect estimation.

External tools learn a weighted adjacency matrix from observations (PC, GES,
LiNGAM). Other external tools estimate a treatment effect given a causal graph.
causalgraph turns the matrix into a directed-graph description, renders it for
people, converts it to the single-line dialect the estimation tool reads, and
hands it over.

# Concept

An adjacency matrix M with labels L describes the edge L[c] -> L[r] for every
entry M[r][c] whose absolute value exceeds the threshold (0.01 by default).
The edge is labelled with the coefficient.

# Usage

Build a graph directly:

	g, err := adjacency.Build(domain.Matrix{{0, 0.5}, {0.02, 0}}, adjacency.WithLabels("a", "b"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(dot.Render(g))       // multi-line DOT
	fmt.Println(dot.RenderTarget(g)) // digraph {a;b;b -> a [label=0.5];a -> b [label=0.02]}

Or run the whole pipeline through the Engine, with tools registered in the
process adapter:

	runner := process.NewRunner(process.WithRegistry(tools))
	eng := causalgraph.New(
		causalgraph.WithDiscoverer(process.NewDiscoverer(runner, "discover")),
		causalgraph.WithEstimator(process.NewEstimator(runner, "estimate")),
	)
	res, err := eng.Analyze(ctx, causalgraph.AnalysisRequest{
		Name:      "smoking",
		Dataset:   "data/smoking.csv",
		Algorithm: domain.AlgorithmLiNGAM,
		Treatment: "smoking",
		Outcome:   "cancer",
	})

# Architecture

  - pkg/domain: matrices, graphs, estimation types and sentinel errors.
  - pkg/adjacency, pkg/dsl: graph construction.
  - pkg/dot: DOT rendering, parsing and normalization.
  - pkg/ports: Discoverer, Estimator, GraphStore.
  - pkg/adapters: process tools, memory and Redis stores, HTTP and MCP servers.
*/
package causalgraph
