package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_, _ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_, _ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var order []string
	_, err := b.Subscribe("test.event", func(e Event) error {
		order = append(order, "first")
		require.Equal(t, 123, e.Data())
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(AnyType, func(Event) error {
		order = append(order, "any")
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe("test.event", func(Event) error {
		order = append(order, "second")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("test.event", "tester", 123, nil)))
	require.Equal(t, []string{"first", "second", "any"}, order)

	order = nil
	require.NoError(t, b.Publish(NewEvent("other", "tester", nil, nil)))
	require.Equal(t, []string{"any"}, order)

	_, err = b.Subscribe("x", nil)
	require.Error(t, err)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "src", nil, nil))
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)
}

func TestHandlerPanicIsReturned(t *testing.T) {
	b := New()
	after := 0
	_, _ = b.Subscribe("x", func(Event) error { panic("observer bug") })
	_, _ = b.Subscribe("x", func(Event) error { after++; return nil })
	_, _ = b.Subscribe(AnyType, func(Event) error { after++; return nil })

	err := b.Publish(NewEvent("x", "src", nil, nil))
	require.ErrorIs(t, err, ErrHandlerPanic)
	require.ErrorContains(t, err, "observer bug")
	require.Equal(t, 2, after)

	require.ErrorIs(t, b.Publish(NewEvent("x", "src", nil, nil)), ErrHandlerPanic)
	require.Equal(t, 4, after)
}

func TestCancel(t *testing.T) {
	b := New()
	n := 0
	sub, err := b.Subscribe("x", func(Event) error { n++; return nil })
	require.NoError(t, err)
	require.True(t, sub.IsActive())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	require.False(t, sub.IsActive())

	require.NoError(t, b.Publish(NewEvent("x", "src", nil, nil)))
	require.Equal(t, 0, n)

	t.Run("FromInsideHandler", func(t *testing.T) {
		var self Subscription
		calls := 0
		self, _ = b.Subscribe("y", func(Event) error {
			calls++
			return self.Cancel()
		})
		_ = b.Publish(NewEvent("y", "src", nil, nil))
		_ = b.Publish(NewEvent("y", "src", nil, nil))
		require.Equal(t, 1, calls)
	})
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateTopic("t1"))
	require.NoError(t, b.CreateTopic("t1"))
	count1, count2 := 0, 0
	_, _ = b.SubscribeTopic("t1", "ev", func(Event) error { count1++; return nil })
	_, _ = b.SubscribeTopic("t2", "ev", func(Event) error { count2++; return nil })
	require.NoError(t, b.PublishToTopic("t1", NewEvent("ev", "src", nil, nil)))
	require.Equal(t, 1, count1)
	require.Equal(t, 0, count2)

	topics := b.GetTopics()
	require.Len(t, topics, 3)
	require.Equal(t, "", topics[0].Name)
	require.Equal(t, TopicInfo{Name: "t1", EventTypes: 1, Subs: 1}, topics[1])
}

func TestFilters(t *testing.T) {
	b := New()
	n := 0
	_, _ = b.Subscribe("x", func(Event) error { n++; return nil })
	onlyTester := func(e Event) bool { return e.Source() == "tester" }

	require.NoError(t, b.PublishWithFilters(NewEvent("x", "other", nil, nil), onlyTester))
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "tester", nil, nil), onlyTester))
	require.Equal(t, 1, n)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	require.Equal(t, EventBusMetrics{}, b.GetMetrics(), "no metrics without observers")

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	_ = b.PublishWithFilters(NewEvent("e", "s", nil, nil), func(Event) bool { return false })

	m := b.GetMetrics()
	require.Equal(t, uint64(1), m.Published)
	require.Equal(t, uint64(1), m.DeliveredHandlers)
	require.Equal(t, uint64(1), m.DroppedByFilters)
	require.Equal(t, uint64(1), m.SubscribersActive)
	require.Equal(t, 1, obs.publishCount)
	require.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	require.Equal(t, 1, obs.publishCount)
}
