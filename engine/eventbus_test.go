package engine

import "testing"

func TestSubscribeReceivesAllTypes(t *testing.T) {
	bus := NewEventBus()

	var got []EventType
	bus.Subscribe(func(evt Event) {
		got = append(got, evt.Type)
	})

	bus.Emit(Event{Type: EventMilestoneRecorded})
	bus.Emit(Event{Type: EventPositionAccepted})

	if len(got) != 2 || got[0] != EventMilestoneRecorded || got[1] != EventPositionAccepted {
		t.Errorf("got %v", got)
	}
}

func TestSubscribeTypeFilter(t *testing.T) {
	bus := NewEventBus()

	var completed int
	bus.Subscribe(func(evt Event) {
		completed++
	}, EventTripCompleted)

	bus.Emit(Event{Type: EventMilestoneRecorded})
	bus.Emit(Event{Type: EventTripCompleted})
	bus.Emit(Event{Type: EventPositionAccepted})

	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	var calls int
	id := bus.Subscribe(func(evt Event) { calls++ })

	bus.Emit(Event{Type: EventTrackingStarted})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventTrackingStarted})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEmitSetsTimestamp(t *testing.T) {
	bus := NewEventBus()

	var stamped bool
	bus.Subscribe(func(evt Event) {
		stamped = !evt.Timestamp.IsZero()
	})
	bus.Emit(Event{Type: EventPlanUpserted})

	if !stamped {
		t.Error("emit should stamp a timestamp")
	}
}
