// Package reports renders retention reports over the live content of a
// repository root and optionally archives them to object storage.
//
// A report carries one row per document: file name, node kind, creation date,
// expiration date (creation plus the retention window) and the elapsed
// calendar days since creation. Archives are JSON documents stored under
// <prefix>/<rootId>/<timestamp>.json in the configured bucket.
//
// # HTTP Endpoints
//
//   - GET  /reports/:rootId          : Render the current retention report.
//   - POST /reports/:rootId/archive  : Render and store the report.
//   - GET  /reports/:rootId/archives : List stored archive keys.
package reports
