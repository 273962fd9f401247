// Package events implements the audit-trail reconciliation feature.
//
// It keeps an append-only event log in sync with the documents stored under a
// content repository root, appending only the entries the log is missing:
//  1. Added / Modified records for documents present in the repository.
//  2. Deleted records for documents that vanished since the last pass.
//  3. Statistics Update records backfilling one entry per elapsed calendar
//     day, for retention tracking.
//
// # Deduplication
//
// Every record is identified by the (actor, timestamp, kind) triplet. The
// triplet is checked before every write and enforced by a unique index, so
// repeated passes over an unchanged repository append nothing.
//
// # Components
//
//   - Reconciler: Runs one synchronization pass (fetch, diff, backfill).
//   - Mapper: Translates repository document snapshots into event records.
//   - EventStore / RunStore: Gorm-backed persistence for the log and the
//     per-run summary history.
//   - Collector: Derives aggregate metrics from the stored log.
//   - Scheduler: Triggers the pass at a fixed interval.
//   - Service, Handler, Loader: HTTP surface and feature registration.
//
// # HTTP Endpoints
//
//   - GET  /events/repository/:rootId : Map the live repository content into events.
//   - GET  /events/log/:rootId        : List stored events for a root folder.
//   - POST /events/import/:rootId     : Run one synchronization pass now.
//   - GET  /events/metrics            : Aggregate metrics over the log.
//   - GET  /events/history            : Recent synchronization run summaries.
package events
