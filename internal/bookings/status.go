package bookings

import (
	"strings"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

// NormalizeStatus folds the full booking lifecycle onto the three values the
// artisan decision views filter on. Canonical values pass through untouched;
// the downstream lifecycle states (Completed, Cancelled, Pending Confirmation)
// all imply the job was accepted at some point, so they fold to Accepted.
// Anything else, including blank input from older records, defaults to Pending.
func NormalizeStatus(raw string) enums.BookingStatus {
	switch enums.BookingStatus(strings.TrimSpace(raw)) {
	case enums.BookingStatusPending, enums.BookingStatusAccepted, enums.BookingStatusDeclined:
		return enums.BookingStatus(strings.TrimSpace(raw))
	case enums.BookingStatusCompleted, enums.BookingStatusCancelled, enums.BookingStatusPendingConfirmation:
		return enums.BookingStatusAccepted
	default:
		return enums.BookingStatusPending
	}
}

// DenormalizedStatuses returns the stored status values that fold onto the
// provided normalized status, used to expand a filter into a SQL IN clause.
func DenormalizedStatuses(normalized enums.BookingStatus) []enums.BookingStatus {
	switch normalized {
	case enums.BookingStatusAccepted:
		return []enums.BookingStatus{
			enums.BookingStatusAccepted,
			enums.BookingStatusCompleted,
			enums.BookingStatusCancelled,
			enums.BookingStatusPendingConfirmation,
		}
	case enums.BookingStatusDeclined:
		return []enums.BookingStatus{enums.BookingStatusDeclined}
	default:
		return []enums.BookingStatus{enums.BookingStatusPending}
	}
}
