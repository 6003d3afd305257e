package enums

import "fmt"

// BookingStatus carries the wire-facing status labels. The title-cased values
// are load-bearing: clients filter and render against these exact strings, so
// they are stored verbatim rather than snake_cased.
type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "Pending"
	BookingStatusAccepted            BookingStatus = "Accepted"
	BookingStatusDeclined            BookingStatus = "Declined"
	BookingStatusCompleted           BookingStatus = "Completed"
	BookingStatusCancelled           BookingStatus = "Cancelled"
	BookingStatusPendingConfirmation BookingStatus = "Pending Confirmation"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAccepted,
	BookingStatusDeclined,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusPendingConfirmation,
}

// IsValid checks whether the given status matches the canonical enum.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw strings into BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
