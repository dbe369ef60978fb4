package room

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	ch     chan []byte
	closed atomic.Bool
}

func newFakeSubscriber(buffer int) *fakeSubscriber {
	return &fakeSubscriber{ch: make(chan []byte, buffer)}
}

func (f *fakeSubscriber) Send(payload []byte) bool {
	select {
	case f.ch <- payload:
		return true
	default:
		return false
	}
}

func (f *fakeSubscriber) Close() {
	f.closed.Store(true)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Publish_Reaches_Every_Member(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	a := newFakeSubscriber(4)
	b := newFakeSubscriber(4)
	r.Join("chat_alice_bob", a)
	r.Join("chat_alice_bob", b)

	r.Publish("chat_alice_bob", []byte("hi"))

	req.Equal([]byte("hi"), <-a.ch)
	req.Equal([]byte("hi"), <-b.ch)
}

func Test_Publish_Does_Not_Cross_Rooms(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	a := newFakeSubscriber(4)
	c := newFakeSubscriber(4)
	r.Join("chat_alice_bob", a)
	r.Join("chat_alice_carol", c)

	r.Publish("chat_alice_bob", []byte("hi"))

	req.Equal([]byte("hi"), <-a.ch)
	req.Empty(c.ch)
}

func Test_Late_Joiners_Get_Nothing(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	r.Publish("chat_alice_bob", []byte("before"))

	late := newFakeSubscriber(4)
	r.Join("chat_alice_bob", late)
	req.Empty(late.ch)
}

func Test_Leave_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	a := newFakeSubscriber(4)
	r.Join("chat_alice_bob", a)
	r.Leave("chat_alice_bob", a)
	r.Leave("chat_alice_bob", a)
	r.Leave("never_joined", a)

	req.Zero(r.MemberCount("chat_alice_bob"))
	r.Publish("chat_alice_bob", []byte("hi"))
	req.Empty(a.ch)
}

func Test_Slow_Subscriber_Is_Evicted_Not_Blocking(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	slow := newFakeSubscriber(1)
	healthy := newFakeSubscriber(4)
	r.Join("chat_alice_bob", slow)
	r.Join("chat_alice_bob", healthy)

	done := make(chan struct{})
	go func() {
		// Second publish overflows the slow queue; neither may block.
		r.Publish("chat_alice_bob", []byte("one"))
		r.Publish("chat_alice_bob", []byte("two"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	req.True(slow.closed.Load())
	req.Equal(1, r.MemberCount("chat_alice_bob"))
	req.Len(healthy.ch, 2)
}

func Test_Concurrent_Rooms_Do_Not_Interfere(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(testLogger())

	const rooms = 16
	const publishes = 200

	subs := make([]*fakeSubscriber, rooms)
	for i := range subs {
		subs[i] = newFakeSubscriber(publishes)
		r.Join(fmt.Sprintf("chat_room_%d", i), subs[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < rooms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("chat_room_%d", i)
			for p := 0; p < publishes; p++ {
				r.Publish(key, []byte("payload"))
			}
		}(i)
	}
	wg.Wait()

	for _, s := range subs {
		req.Len(s.ch, publishes)
		req.False(s.closed.Load())
	}
}

func Test_Join_Leave_Publish_Race(t *testing.T) {
	r := NewRegistry(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("chat_room_%d", i%4)
			for n := 0; n < 100; n++ {
				s := newFakeSubscriber(4)
				r.Join(key, s)
				r.Publish(key, []byte("x"))
				r.Leave(key, s)
			}
		}(i)
	}
	wg.Wait()
}
