// Package room holds the transient subscription registry that fans published
// payloads out to live sessions. Nothing here survives a restart; the
// registry is rebuilt as connections come back.
package room

// Subscriber is one live session's receiving end. Send queues a payload and
// reports false when the subscriber's buffer is full, which the registry
// treats as a dead consumer. Close releases the subscriber's queue; the
// registry calls it exactly once, on eviction.
type Subscriber interface {
	Send(payload []byte) bool
	Close()
}

// Broker is the pub/sub surface sessions and the gateway depend on. It is
// always injected, never a process-wide singleton, so tests can swap in a
// bare Registry and deployments can layer the redis bridge on top.
type Broker interface {
	Join(roomKey string, sub Subscriber)
	Leave(roomKey string, sub Subscriber)

	// Publish delivers payload to every subscriber joined to roomKey at the
	// time of the call. No buffering, no replay for late joiners.
	Publish(roomKey string, payload []byte)
}
