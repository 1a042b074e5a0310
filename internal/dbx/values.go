package dbx

import (
	"database/sql"
	"time"
)

// Nullable turns an optional string into a query argument: NULL when nil.
func Nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// StringPtr is the scan-side counterpart of Nullable.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ToMillis and FromMillis convert timestamps stored as INTEGER unix
// milliseconds (the SQLite layout).
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
