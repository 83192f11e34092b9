package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot(t *testing.T) {
	tests := []struct {
		participants string
		leftover     bool
		codes        []string
		party        int
	}{
		{participants: "AB, CD,EF", codes: []string{"AB", "CD", "EF"}, party: 3},
		{participants: " Restes ", leftover: true, party: 1},
		{participants: "RESTES", leftover: true, party: 1},
		{participants: "", party: 1},
		{participants: "AB,,", codes: []string{"AB"}, party: 1},
	}
	for _, tt := range tests {
		t.Run(tt.participants, func(t *testing.T) {
			s := Slot{Participants: tt.participants}
			assert.Equal(t, tt.leftover, s.IsLeftover())
			assert.Equal(t, tt.codes, s.Codes())
			assert.Equal(t, tt.party, s.PartySize())
		})
	}
}

func TestMeal(t *testing.T) {
	m := Meal{Name: UnresolvedName, Remarks: []string{"a", "b"}}
	assert.False(t, m.Resolved())
	assert.Equal(t, "a; b", m.RemarksText())

	m.RecipeID = "x"
	assert.True(t, m.Resolved())
}

func TestConstraintsIsZero(t *testing.T) {
	assert.True(t, Constraints{}.IsZero())
	assert.False(t, Constraints{Time: TimeQuick}.IsZero())
}
