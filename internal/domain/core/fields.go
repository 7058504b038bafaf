package core

import (
	"workforce/internal/domain/auth"
	"workforce/internal/domain/roles"
)

// FilterEmployeeFields strips contact details the viewer is not entitled to.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if user.Role.Rank() >= roles.Admin.Rank() {
		return
	}
	if emp.ID == user.UserID {
		return
	}
	if user.Role == roles.Manager && user.DepartmentID != "" && emp.DepartmentID == user.DepartmentID {
		return
	}
	emp.Email = ""
	emp.Phone = ""
}
