package employee

import (
	"time"
)

// Employee is the slice of the HR employee record the attendance engine
// needs: identity, display name and the contact channels for reminders.
type Employee struct {
	ID               string
	UserID           *string
	EmployeeCode     string
	FullName         string
	PhoneNumber      string
	Email            *string
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee should be considered by attendance jobs.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.DeletedAt == nil
}

// HasUserAccount reports whether in-app notifications can reach the employee.
func (e Employee) HasUserAccount() bool {
	return e.UserID != nil && *e.UserID != ""
}

func (e Employee) EmailAddress() string {
	if e.Email == nil {
		return ""
	}
	return *e.Email
}
