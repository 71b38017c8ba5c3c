// Package represent encodes a mapping.Mapping as a fixed-length integer
// vector and endows that vector space with the geometric structure the
// search engines need: a distance, ball sampling, crossover, and
// projection of a real-valued point back onto the discrete feasible set
// (spec.md §4.2).
//
// Two variants are provided: SimpleVector, a direct index encoding with an
// L^p distance, and MetricEmbedding, which layers a classical
// multidimensional-scaling embedding of the processors on top of
// SimpleVector's encoding so that Distance reflects actual processor
// dissimilarity (frequency, type) rather than raw index difference.
package represent
