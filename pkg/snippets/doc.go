// Package snippets is the snippet library of the tag service: named tag
// programs that chat users save once and run by name.
//
// A Service validates and parses every source before it reaches Storage,
// so a stored snippet always compiles. Compile loads a snippet, builds its
// AST and records the use that retention later measures age from.
//
// Storage backends live in the storage subpackage; age and count based
// pruning lives in the retention subpackage.
package snippets
