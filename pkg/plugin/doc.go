// Package plugin implements the out-of-process plugin host described in
// SPEC_FULL.md §4.4 (C4): manifest/lock loading and verification,
// length-prefixed subprocess RPC, and the capability broker.
package plugin
