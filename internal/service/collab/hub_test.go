package collab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	sub1 := hub.Subscribe("meeting-1")
	sub2 := hub.Subscribe("meeting-1")
	other := hub.Subscribe("meeting-2")
	defer sub1.Close()
	defer sub2.Close()
	defer other.Close()

	hub.Publish(FieldUpdate{MeetingID: "meeting-1", Field: FieldCode, Value: "print(1)"})

	u1 := <-sub1.C
	u2 := <-sub2.C
	assert.Equal(t, "print(1)", u1.Value)
	assert.Equal(t, FieldCode, u1.Field)
	assert.Equal(t, u1.Value, u2.Value)
	assert.Empty(t, other.C, "subscriber of another meeting should see nothing")
}

func TestHubStaleUpdateDropped(t *testing.T) {
	hub := NewHub()
	now := time.Now()
	hub.Publish(FieldUpdate{MeetingID: "m", Field: FieldLanguage, Value: "go", At: now})
	// 时间戳早于已记录值，按last-write-wins丢弃
	hub.Publish(FieldUpdate{MeetingID: "m", Field: FieldLanguage, Value: "python", At: now.Add(-time.Second)})

	last, ok := hub.Last("m", FieldLanguage)
	assert.True(t, ok)
	assert.Equal(t, "go", last.Value)
}

func TestHubZeroTimestampStamped(t *testing.T) {
	hub := NewHub()
	hub.Publish(FieldUpdate{MeetingID: "m", Field: FieldOutput, Value: "42"})
	last, ok := hub.Last("m", FieldOutput)
	assert.True(t, ok)
	assert.False(t, last.At.IsZero())
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("m")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(FieldUpdate{MeetingID: "m", Field: FieldCode, Value: "v"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("m")
	sub.Close()
	_, ok := <-sub.C
	assert.False(t, ok)
	// 重复Close不应panic
	sub.Close()
}
