package bookings

import (
	"testing"

	"github.com/skilledlink/skilledlink-backend/pkg/enums"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want enums.BookingStatus
	}{
		{raw: "Pending", want: enums.BookingStatusPending},
		{raw: "Accepted", want: enums.BookingStatusAccepted},
		{raw: "Declined", want: enums.BookingStatusDeclined},
		{raw: "Completed", want: enums.BookingStatusAccepted},
		{raw: "Cancelled", want: enums.BookingStatusAccepted},
		{raw: "Pending Confirmation", want: enums.BookingStatusAccepted},
		{raw: "", want: enums.BookingStatusPending},
		{raw: "   ", want: enums.BookingStatusPending},
		{raw: "garbage", want: enums.BookingStatusPending},
		{raw: "pending", want: enums.BookingStatusPending},
		{raw: "ACCEPTED", want: enums.BookingStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeStatus(tt.raw); got != tt.want {
				t.Fatalf("NormalizeStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDenormalizedStatuses(t *testing.T) {
	accepted := DenormalizedStatuses(enums.BookingStatusAccepted)
	if len(accepted) != 4 {
		t.Fatalf("expected 4 stored statuses folding to Accepted, got %d", len(accepted))
	}

	declined := DenormalizedStatuses(enums.BookingStatusDeclined)
	if len(declined) != 1 || declined[0] != enums.BookingStatusDeclined {
		t.Fatalf("unexpected declined expansion %v", declined)
	}

	pending := DenormalizedStatuses(enums.BookingStatusPending)
	if len(pending) != 1 || pending[0] != enums.BookingStatusPending {
		t.Fatalf("unexpected pending expansion %v", pending)
	}
}
