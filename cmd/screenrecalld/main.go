// screenrecalld is a screen-memory evidence engine: it captures the screen
// on an activity-aware cadence, normalizes and extracts derived evidence
// from each surviving frame, and answers natural-language queries against
// that evidence over a loopback HTTP API.
//
// Usage:
//
//	# Start the daemon with default configuration
//	screenrecalld run
//
//	# Start with a custom configuration file
//	screenrecalld run --config /path/to/config.yaml
//
//	# Show version information
//	screenrecalld version
//
//	# Query the running daemon
//	screenrecalld query "what was I looking at an hour ago"
//
//	# Verify the evidence ledger's hash chain
//	screenrecalld verify-chain --ledger data/ledger.log
package main

func main() {
	Execute()
}
