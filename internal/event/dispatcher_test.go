package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/gamemap"
)

func newEntity(id ecs.EntityID) *ecs.Entity {
	return &ecs.Entity{ID: id, Type: &catalog.MonsterType{ID: "RAT"}}
}

func TestFireInSubscriptionOrder(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	var order []int
	for i := 1; i <= 3; i++ {
		_, err := d.Subscribe(EntityMoved, nil, func(Event) { order = append(order, i) })
		require.NoError(t, err)
	}
	require.NoError(t, d.Fire(New(Moved{To: gamemap.Point{X: 1}}, nil)))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSourceFilter(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	a, b := newEntity(1), newEntity(2)
	var got []*ecs.Entity
	_, err := d.Subscribe(EntityAttacked, a, func(ev Event) { got = append(got, ev.Source) })
	require.NoError(t, err)

	require.NoError(t, d.Fire(New(Attacked{Attacker: b}, a)))
	require.NoError(t, d.Fire(New(Attacked{Attacker: a}, b)))
	require.NoError(t, d.Fire(New(Attacked{}, nil)))
	assert.Equal(t, []*ecs.Entity{a}, got)
}

func TestUnknownEvent(t *testing.T) {
	d := NewDispatcher(EntityMoved)

	_, err := d.Subscribe(DoorOpen, nil, func(Event) {})
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.ErrorIs(t, d.Fire(New(DoorOpened{}, nil)), ErrUnknownEvent)
	assert.ErrorIs(t, d.Register(Name(200)), ErrUnknownEvent)
	assert.Panics(t, func() { NewDispatcher(Name(0)) })

	_, err = ParseName("entity_exploded")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestPayloadMismatch(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	err := d.Fire(Event{Name: EntityMoved, Payload: DoorOpened{}})
	assert.ErrorIs(t, err, ErrPayloadMismatch)
	err = d.Fire(Event{Name: EntityMoved})
	assert.ErrorIs(t, err, ErrPayloadMismatch)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	calls := 0
	id, err := d.Subscribe(PlayerTookAction, nil, func(Event) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 1, d.Subscribers(PlayerTookAction))

	assert.True(t, d.Unsubscribe(id))
	assert.False(t, d.Unsubscribe(id))
	assert.Equal(t, 0, d.Subscribers(PlayerTookAction))

	require.NoError(t, d.Fire(New(TookAction{}, nil)))
	assert.Zero(t, calls)
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	var second SubscriptionID
	var calls []string
	_, err := d.Subscribe(EntityDied, nil, func(Event) {
		calls = append(calls, "first")
		d.Unsubscribe(second)
	})
	require.NoError(t, err)
	second, err = d.Subscribe(EntityDied, nil, func(Event) { calls = append(calls, "second") })
	require.NoError(t, err)

	require.NoError(t, d.Fire(New(Died{}, nil)))
	assert.Equal(t, []string{"first"}, calls)
}

func TestSubscribeDuringDispatch(t *testing.T) {
	d := NewDispatcher(AllNames()...)
	late := 0
	_, err := d.Subscribe(EntityBumped, nil, func(Event) {
		_, _ = d.Subscribe(EntityBumped, nil, func(Event) { late++ })
	})
	require.NoError(t, err)

	require.NoError(t, d.Fire(New(Bumped{}, nil)))
	assert.Zero(t, late, "a subscriber added mid-dispatch waits for the next event")
	require.NoError(t, d.Fire(New(Bumped{}, nil)))
	assert.Equal(t, 1, late)
}

func TestNames(t *testing.T) {
	all := AllNames()
	assert.Len(t, all, 11)
	for _, n := range all {
		parsed, err := ParseName(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
	assert.Equal(t, "door_open", DoorOpen.String())
	assert.Equal(t, ScoreIncreased, New(ScoreChange{Delta: 1}, nil).Name)
}
