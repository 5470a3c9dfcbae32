// Package memory implements the store interfaces in process.
//
// All state lives in immutable radix trees (hashicorp/go-immutable-radix).
// Writers serialize on one mutex, build the next version with tree
// transactions and publish it atomically; readers load the current version
// and never block or observe a partial write. Config keys are indexed
// directly, so prefix scans walk only the matching subtree in byte order.
package memory
