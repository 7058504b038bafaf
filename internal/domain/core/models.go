package core

import (
	"time"

	"workforce/internal/domain/roles"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         roles.Role `json:"role"`
	DepartmentID string     `json:"departmentId"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Subject projects the employee onto the fields role decisions look at.
func (e Employee) Subject() roles.Subject {
	return roles.Subject{ID: e.ID, Role: e.Role, DepartmentID: e.DepartmentID}
}

// Active reports whether the employee may act or hold a role that counts.
func (e Employee) Active() bool {
	return e.Status == StatusActive
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId"`
	CreatedAt time.Time `json:"createdAt"`
}
