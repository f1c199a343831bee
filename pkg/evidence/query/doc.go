// Package query validates evidence.Query parameters before they reach a
// Storage backend.
package query
