// Package api implements the HTTP API for browsing analysis runs.
//
// Routes:
//
//	GET  /api/v1/health            liveness and dependency checks
//	GET  /api/v1/system            runtime, MQTT and database statistics
//	GET  /api/v1/runs              recent runs, newest first (?limit=N)
//	POST /api/v1/runs              start a run (when a runner is configured)
//	GET  /api/v1/runs/{id}         one run with its per-location breakdown
//	GET  /api/v1/runs/{id}/report  the run's report in artifact text format
//	GET  /api/v1/runs/{id}/events  the run's final timeline as JSON
//	GET  /metrics                  Prometheus exposition
//
// Every request passes through request-id, logging (with Prometheus request
// metrics), panic recovery and body-size middleware. The server reads stored
// results only; runs are executed by the analysis package.
package api
