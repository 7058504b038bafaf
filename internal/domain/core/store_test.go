package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	id, ok := ParseID("6F9619FF-8B86-D011-B42D-00CF4FC964FF")
	assert.True(t, ok)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00cf4fc964ff", id)

	for _, raw := range []string{"", "intern", "6f9619ff-8b86-d011-b42d", "' OR 1=1 --"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, raw)
	}
}

func TestEmployeeActive(t *testing.T) {
	assert.True(t, Employee{Status: StatusActive}.Active())
	assert.False(t, Employee{Status: StatusInactive}.Active())
	assert.False(t, Employee{}.Active())
}
