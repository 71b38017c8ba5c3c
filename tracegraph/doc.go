// Package tracegraph builds and queries the timed dependency DAG for a
// candidate mapping. See builder.go for construction, critical_path.go for
// the longest-path query and remapping-aware reweighting, and resource.go
// for the slowest-processor/slowest-primitive selection policy.
package tracegraph
