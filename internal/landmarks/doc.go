// Package landmarks partitions one frame's face-mesh landmark array into the
// named anatomical subsets consumed by the landmark-measure parameters.
//
// Each subset is exposed twice, as a planar projection (`<name>_xy`) and as
// the full 3-D set (`<name>_xyz`). The catch-all subset `all` holds every
// point exactly once. Point order within a subset follows ascending landmark
// index, which the hull and ellipse fitters rely on.
//
// Sets are rebuilt for every frame and never mutated after Classify returns.
package landmarks
