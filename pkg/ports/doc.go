/*
Package ports defines the driven ports (interfaces) of the causal analysis pipeline.

These interfaces decouple the pipeline from the external tools that discover
structure and estimate effects, and from the backends that keep built graphs.

# Key Interfaces

  - Discoverer: runs a structure search over a dataset and reports an adjacency matrix.
  - Estimator: identifies and estimates a treatment effect over a built graph.
  - GraphStore: persists built graphs by name.
  - DistributedLocker: serializes analyses that write the same graph across replicas.
*/
package ports
