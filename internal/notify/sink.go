package notify

// Sink receives best-effort UI updates. Implementations must never block the
// caller; a slow or disconnected client loses updates rather than stalling
// line processing.
type Sink interface {
	Publish(update interface{})
}

// Multi fans an update out to several sinks
type Multi []Sink

// Publish implements Sink
func (m Multi) Publish(update interface{}) {
	for _, s := range m {
		s.Publish(update)
	}
}
