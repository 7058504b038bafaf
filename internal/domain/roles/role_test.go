package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderOrder(t *testing.T) {
	ladder := Ladder()
	require.Equal(t, []Role{Intern, Employee, Manager, Admin, SuperAdmin}, ladder)
	for i, r := range ladder {
		assert.Equal(t, i, r.Rank())
	}

	ladder[0] = SuperAdmin
	assert.Equal(t, Intern, Ladder()[0], "Ladder must return a copy")
}

func TestNext(t *testing.T) {
	ladder := Ladder()
	for i, r := range ladder[:len(ladder)-1] {
		next, ok := Next(r)
		require.True(t, ok, r)
		assert.Equal(t, ladder[i+1], next)
	}

	_, ok := Next(SuperAdmin)
	assert.False(t, ok)
	_, ok = Next(Role("CEO"))
	assert.False(t, ok)
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		role Role
		want Role
		ok   bool
	}{
		{Intern, "", false},
		{Employee, Intern, true},
		{Manager, Employee, true},
		{Admin, Manager, true},
		{SuperAdmin, "", false},
		{Role("admin"), "", false},
		{Role(""), "", false},
	}
	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			got, ok := Previous(tc.role)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"ADMIN", Admin, true},
		{"Admin", Admin, true},
		{" admin ", Admin, true},
		{"administrator", Admin, true},
		{"super_admin", SuperAdmin, true},
		{"Super Administrator", SuperAdmin, true},
		{"super-admin", SuperAdmin, true},
		{"SuperAdmin", SuperAdmin, true},
		{"intern", Intern, true},
		{"Employee", Employee, true},
		{"manager", Manager, true},
		{"", "", false},
		{"owner", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := Normalize(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
