// Package models defines the persisted entities and their client-safe
// projections.
package models

// TimeFormat is the stored timestamp layout. Fixed-width microseconds
// keep the strings lexicographically ordered, which the newest-first
// sorts rely on.
const TimeFormat = "2006-01-02T15:04:05.000000"
