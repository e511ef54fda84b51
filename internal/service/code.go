package service

import (
	"strconv"
	"strings"
	"time"

	"umrahdesk/internal/models"
)

// now is swappable in tests.
var now = time.Now

// GenerateBookingCode returns a human-readable code: the fixed "UMR" prefix
// followed by the current unix-millisecond timestamp in upper-case base 36.
// Uniqueness is enforced by the bookings.code unique index; the orchestrator
// retries with a fresh timestamp on collision.
func GenerateBookingCode() string {
	return models.BookingCodePrefix + strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36))
}

// generateRetryCode is used after a collision: the nanosecond timestamp
// makes back-to-back regenerations distinct within the same millisecond.
func generateRetryCode() string {
	return models.BookingCodePrefix + strings.ToUpper(strconv.FormatInt(now().UnixNano(), 36))
}
