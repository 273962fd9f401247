// Package utils provides common utility functions for the report service.
// Its conversion helpers normalize values read out of JSON detail bags,
// where numeric types depend on whether the bag was freshly built or
// round-tripped through the database.
package utils
