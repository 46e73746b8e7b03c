/*
Package observability provides tools for monitoring the causal analysis pipeline.

It includes Prometheus collectors for graph building, normalization, stage
latency and tool runs, and lifecycle hooks that feed them and log each event.
*/
package observability
