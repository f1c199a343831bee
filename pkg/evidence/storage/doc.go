// Package storage implements evidence.Storage backends.
package storage
