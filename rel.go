// Package rel implements a small in-process data-access layer: schema-aware
// relations over pluggable datasets, validated mutation commands, pure
// tuple-to-object mappers, and a composition engine that chains commands and
// mappers into pipelines with short-circuiting failure semantics.
//
// The storage backend is abstracted behind the Dataset interface; the inmem
// and boltdb subpackages provide implementations. All mutual exclusion
// between concurrent mutations is the dataset's responsibility — schemas,
// relations, commands, and mappers are immutable after construction and safe
// for concurrent use.
package rel
