package enums

import "fmt"

// ComplianceStatus marks whether an order step followed the standard procedure.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "Compliant"
	ComplianceNonCompliant ComplianceStatus = "Non-Compliant"
)

var validComplianceStatuses = []ComplianceStatus{ComplianceCompliant, ComplianceNonCompliant}

// String implements fmt.Stringer.
func (s ComplianceStatus) String() string {
	return string(s)
}

// Valid reports whether the status is a known compliance value.
func (s ComplianceStatus) Valid() bool {
	for _, valid := range validComplianceStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// IsCompliant reports whether the step passed.
func (s ComplianceStatus) IsCompliant() bool {
	return s == ComplianceCompliant
}

// ParseComplianceStatus converts a raw string into a ComplianceStatus.
func ParseComplianceStatus(value string) (ComplianceStatus, error) {
	status := ComplianceStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("invalid compliance status %q", value)
	}
	return status, nil
}
