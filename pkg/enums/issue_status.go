package enums

import "fmt"

// IssueStatus maps to the issue_status enum in Postgres.
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "open"
	IssueStatusInReview IssueStatus = "in_review"
	IssueStatusResolved IssueStatus = "resolved"
)

var validIssueStatuses = []IssueStatus{
	IssueStatusOpen,
	IssueStatusInReview,
	IssueStatusResolved,
}

func (s IssueStatus) IsValid() bool {
	for _, candidate := range validIssueStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseIssueStatus(value string) (IssueStatus, error) {
	for _, candidate := range validIssueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue status %q", value)
}
