// Package matrix provides the small dense-matrix surface the mapping
// exploration engine needs: a row-major Dense matrix and a symmetric
// Jacobi eigendecomposition (EigenSym), used by represent.MetricEmbedding
// to turn a processor dissimilarity matrix into MDS coordinates
// (SPEC_FULL.md §4.2). The companion matrix/ops package adds LU
// decomposition, used by search/designcenter to fit the cubic splines
// behind its p_target/step schedules (SPEC_FULL.md §4.4.5).
//
// This is a trimmed descendant of a general-purpose graph/matrix library:
// adjacency and incidence matrices, Floyd-Warshall, QR, and the
// statistics helpers it also provided have no caller in this domain and
// were not carried over.
package matrix
