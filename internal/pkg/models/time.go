package models

import (
	"time"
)

// NowMillis returns the current unix time in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Millis converts a duration expressed in milliseconds to time.Duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
