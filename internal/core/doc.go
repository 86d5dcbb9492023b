// Package core implements the normalization pipeline for apartment
// real-transaction tables: rewriting new-API exports into the legacy column
// shape and preprocessing legacy-shaped tables for analysis.
//
// The package has no UI dependencies and holds no mutable state; every
// operation is a pure function over an in-memory DataFrame, safe to call
// repeatedly and concurrently.
package core
