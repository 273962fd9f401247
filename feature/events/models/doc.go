// Package models defines the persisted shapes of the audit log: EventRecord
// (one append-only log entry with its JSON detail bag and derived lookup
// columns) and SyncRun (one summary row per reconciliation pass).
package models
