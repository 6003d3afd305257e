package enums

import "fmt"

// KYCStatus tracks where an artisan sits in the verification pipeline.
type KYCStatus string

const (
	KYCStatusNotSubmitted KYCStatus = "not_submitted"
	KYCStatusPending      KYCStatus = "pending"
	KYCStatusApproved     KYCStatus = "approved"
	KYCStatusDeclined     KYCStatus = "declined"
)

var validKYCStatuses = []KYCStatus{
	KYCStatusNotSubmitted,
	KYCStatusPending,
	KYCStatusApproved,
	KYCStatusDeclined,
}

func (s KYCStatus) IsValid() bool {
	for _, candidate := range validKYCStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseKYCStatus(value string) (KYCStatus, error) {
	for _, candidate := range validKYCStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kyc status %q", value)
}
