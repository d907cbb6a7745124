package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUndirected(t *testing.T) {
	friday := Weekday{Name: "friday"}
	nextFriday := Weekday{Name: "friday", Direction: Next}

	assert.True(t, IsUndirected(friday))
	assert.False(t, IsUndirected(nextFriday))
	assert.True(t, IsUndirected(DateTime{Day: friday, Clock: &Clock{Named: "noon"}}))
	assert.False(t, IsUndirected(DateTime{Day: NamedDay{Name: "tomorrow"}}))
	assert.False(t, IsUndirected(DateTime{Clock: &Clock{Hour: 3}}))
	assert.True(t, IsUndirected(Offset{Quantity: 2, Unit: UnitDay, Sign: -1, Anchor: &DateTime{Day: friday}}))
	assert.False(t, IsUndirected(Offset{Quantity: 2, Unit: UnitDay, Sign: -1}))
	assert.False(t, IsUndirected(ASAP{}))
}

func TestDirect(t *testing.T) {
	anchor := DateTime{Day: Weekday{Name: "tue"}}
	offset := Offset{Quantity: 1, Unit: UnitDay, Sign: -1, Anchor: &anchor}

	directed := Direct(offset, Last).(Offset)
	assert.Equal(t, Last, directed.Anchor.Day.(Weekday).Direction)
	// The original fragment is untouched.
	assert.Equal(t, Undirected, offset.Anchor.Day.(Weekday).Direction)

	// An explicit direction is never overridden.
	assert.Equal(t, This, Direct(Weekday{Name: "mon", Direction: This}, Next).(Weekday).Direction)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, Last, ParseDirection("this last"))
	assert.Equal(t, Next, ParseDirection("Next"))
	assert.Equal(t, This, ParseDirection("this"))
	assert.Equal(t, Undirected, ParseDirection(""))

	u, err := ParseUnit("Weeks")
	require.NoError(t, err)
	assert.Equal(t, UnitWeek, u)
	_, err = ParseUnit("fortnight")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	edge, ok := ParseEdge("late")
	assert.True(t, ok)
	assert.Equal(t, End, edge)
	_, ok = ParseEdge("during")
	assert.False(t, ok)

	assert.Equal(t, "offset", ShapeOffset.String())
}
