// Package memory stores classified text items partitioned by category and
// filtered by a ban-line threshold.
//
// Each of the three fixed categories (words, phrases, game ideas) maps
// exact text to its last-known score. Scores at or above the ban line are
// banned; Add refuses them and clamps stored scores strictly below the
// line. Put is the override escape hatch used when an operator marks an
// item unsafe: it records the item with a banned score so it always reads
// as banned, regardless of what the network currently thinks.
//
// Snapshots capture the whole store as a single JSON document and restore
// it wholesale; there is no partial or streamed persistence.
package memory
