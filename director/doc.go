// Package director implements the persistence boundary of the core: the
// raw column-buffer codec (Serialize/Materialize), an LZ4-framed snapshot
// container for single-file spills, parquet-backed readers and writers, and
// the input/output directors that map table kinds to trees and files.
//
// The output director resolves a destination tree per table kind under a
// fixed override priority: explicit per-table directive, then the global
// default flag, then the configuration-file default, then the built-in
// default. Output rolls to a new file every N merged batches.
//
// The input director resolves candidate files per table kind and requires
// every kind's candidate count to agree; disagreement is fatal at startup,
// never tolerated per batch.
package director
