// Package batch provides helpers for tools that operate on one or many
// Google resources in a single call: parameter parsing for string-or-array
// arguments, per-item execution with partial-failure collection, and a
// consistent JSON result format.
package batch
