// Package document reads and writes generic trees in JSON, YAML and HCL.
//
// A generic tree is built from *orderedmap.OrderedMap[string, any] mappings,
// []any sequences and scalars (nil, bool, string, int64, float64). Key order is
// preserved in both directions for every format. The Store picks the format
// from the file extension and works on any afero.Fs.
package document
