// Package api defines the request and response types of the visiondesc HTTP API.
//
// # API Overview
//
// visiondesc exposes a small RESTful surface over the describe service:
//   - POST /v1/describe        describe one image
//   - POST /v1/describe/batch  describe up to the batch limit with bounded concurrency
//   - GET  /v1/providers       list configured providers
//   - GET  /health, /healthz, /ready, /version
//   - GET  /metrics            Prometheus exposition
//
// Every JSON response uses the envelope {success, data, error, timestamp, request_id}.
// A batch never fails as a whole because of one image: per-image failures are
// reported inside data.results and counted in data.summary.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
