package domain

import "time"

// Role enumerates access levels in increasing order of capability.
type Role string

const (
	RoleUser       Role = "USER"
	RoleTechnician Role = "TECHNICIAN"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
)

// Department represents the organizational unit a user belongs to.
type Department string

const (
	DepartmentFinance       Department = "FINANCE"
	DepartmentHRAdmin       Department = "HR_ADMIN"
	DepartmentMarketing     Department = "MARKETING"
	DepartmentSystemNetwork Department = "SYSTEM_NETWORK"
)

// Site enumerates office locations.
type Site string

const (
	SiteLagosOffice Site = "LAGOS_OFFICE"
	SiteAbujaOffice Site = "ABUJA_OFFICE"
)

// User is the domain model for everyone who files or works tickets.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Department   Department
	Site         Site
	Role         Role
	IsActive     bool
	EmployeeID   *string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display purposes.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
