package timeutil

import "time"

// UnixMS converts a time to the epoch-millisecond encoding used by the
// persisted match payloads.
func UnixMS(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMS converts an epoch-millisecond value back to a UTC time.
func FromUnixMS(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
