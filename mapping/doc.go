// Package mapping defines the Mapping type and its platform/KPN invariant
// checks. See represent for the (de)coding between a Mapping and a fixed
// integer vector.
package mapping
