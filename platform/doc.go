// Package platform models a heterogeneous hardware platform: processors
// grouped by integer processor-group id, schedulers bound to a processor
// subset, and communication primitives advertising which (source, sinks)
// processor tuples they support.
//
//	go get github.com/kpnflow/dse/platform
package platform
