/*
Package domain contains the core models shared by every causalgraph component.

It defines the weighted adjacency matrix produced by causal discovery, the
directed graph derived from it, the tabular dataset it was learned from and the
request/result types exchanged with external discovery and estimation tools.
This package is kept pure and free of I/O, following Hexagonal Architecture
principles.

# Key Entities

  - Matrix: square coefficient table; entry (r, c) is the edge c -> r.
  - Graph: ordered nodes and edges with their coefficient labels.
  - Dataset: named numeric columns loaded from a CSV file.
  - Discovery / Estimate: results reported by external tools.
*/
package domain
