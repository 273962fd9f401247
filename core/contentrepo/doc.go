// Package contentrepo provides the client for the content repository's
// search API.
//
// It centralizes query construction (recursive ANCESTOR search filtered to
// content-bearing nodes) and normalizes raw search entries into
// DocumentSnapshot values the rest of the application consumes. The search
// is issued as a single page bounded by the configured MaxItems; the bound
// is intentionally high for report-style exports and documents beyond it
// are not returned.
//
// A transport or API failure surfaces as an error so a reconciliation run
// can abort without writing anything.
package contentrepo
