package enums

import "fmt"

// BookingType distinguishes direct bookings from negotiated service requests.
type BookingType string

const (
	BookingTypeDirect         BookingType = "direct"
	BookingTypeServiceRequest BookingType = "service_request"
)

var validBookingTypes = []BookingType{
	BookingTypeDirect,
	BookingTypeServiceRequest,
}

func (t BookingType) IsValid() bool {
	for _, candidate := range validBookingTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseBookingType(value string) (BookingType, error) {
	for _, candidate := range validBookingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking type %q", value)
}
