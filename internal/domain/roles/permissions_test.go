package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanPerformAction(t *testing.T) {
	tests := []struct {
		name   string
		actor  Role
		target Role
		action Action
		want   bool
	}{
		{"manager promotes intern", Manager, Intern, ActionPromote, true},
		{"manager promotes employee", Manager, Employee, ActionPromote, false},
		{"manager demotes employee", Manager, Employee, ActionDemote, true},
		{"manager demotes manager", Manager, Manager, ActionDemote, false},
		{"manager default", Manager, Intern, ActionAssignTask, false},
		{"admin promotes intern", Admin, Intern, ActionPromote, true},
		{"admin promotes employee", Admin, Employee, ActionPromote, true},
		{"admin promotes manager", Admin, Manager, ActionPromote, false},
		{"admin demotes employee", Admin, Employee, ActionDemote, true},
		{"admin demotes manager", Admin, Manager, ActionDemote, true},
		{"admin demotes intern", Admin, Intern, ActionDemote, false},
		{"admin demotes admin", Admin, Admin, ActionDemote, false},
		{"admin transfers", Admin, Admin, ActionTransferSuperAdmin, false},
		{"admin default on employee", Admin, Employee, ActionManageTeam, true},
		{"admin default on super admin", Admin, SuperAdmin, ActionManageTeam, false},
		{"super admin promotes admin", SuperAdmin, Admin, ActionPromote, true},
		{"super admin demotes manager", SuperAdmin, Manager, ActionDemote, true},
		{"super admin transfers to admin", SuperAdmin, Admin, ActionTransferSuperAdmin, true},
		{"super admin transfers to manager", SuperAdmin, Manager, ActionTransferSuperAdmin, false},
		{"super admin default", SuperAdmin, Intern, ActionAssignProject, true},
		{"employee promotes intern", Employee, Intern, ActionPromote, false},
		{"intern demotes intern", Intern, Intern, ActionDemote, false},
		{"unknown actor", Role("OWNER"), Intern, ActionPromote, false},
		{"unknown target", SuperAdmin, Role("OWNER"), ActionPromote, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanPerformAction(tc.actor, tc.target, tc.action))
			// Same inputs, same answer.
			assert.Equal(t, tc.want, CanPerformAction(tc.actor, tc.target, tc.action))
		})
	}
}

func TestCanPromote(t *testing.T) {
	tests := []struct {
		actor    Role
		from, to Role
		want     bool
	}{
		{SuperAdmin, Intern, Admin, true},
		{SuperAdmin, Admin, SuperAdmin, true},
		{Admin, Intern, Employee, true},
		{Admin, Employee, Manager, true},
		{Admin, Intern, Manager, false},
		{Admin, Manager, Admin, false},
		{Manager, Intern, Employee, true},
		{Manager, Employee, Manager, false},
		{Employee, Intern, Employee, false},
		{Intern, Intern, Employee, false},
		{SuperAdmin, Intern, Role("CEO"), false},
	}
	for _, tc := range tests {
		t.Run(string(tc.actor)+"_"+string(tc.from)+"_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, CanPromote(tc.actor, tc.from, tc.to))
		})
	}
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Transfer_Super_Admin ")
	assert.True(t, ok)
	assert.Equal(t, ActionTransferSuperAdmin, a)

	_, ok = ParseAction("fire")
	assert.False(t, ok)

	assert.True(t, ActionAssignTask.Delegated())
	assert.False(t, ActionPromote.Delegated())
}
