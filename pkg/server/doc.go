// Package server provides the loopback query API server.
//
// # Architecture
//
// The server package is the top-level HTTP entry point for the read-only
// query path (C8). It:
//   - Exposes POST /v1/query over the loopback address from QueryConfig
//   - Delegates all query handling to pkg/query's Orchestrator
//   - Exposes liveness/readiness endpoints via pkg/telemetry/health
//   - Manages graceful shutdown
//
// # Basic Usage
//
//	import (
//	    "context"
//	    "screenrecall/pkg/config"
//	    "screenrecall/pkg/query"
//	    "screenrecall/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//	orchestrator := query.NewOrchestrator(index, resolver, storage, traces, nil, nil)
//	srv := server.NewServer(&cfg.Query, orchestrator, checker)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /v1/query - the query contract: {query_text, options} ->
//     {state, answer?, citations[], plugins_in_path[], query_hash}
//   - GET /health - liveness probe
//   - GET /ready - readiness probe
//
// The query path never accepts schedule_extract or raw_media_access
// options: those belong to the capture/extraction pipeline, not this
// read-only surface (spec.md §4.8, §6).
package server
