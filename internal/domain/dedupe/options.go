package dedupe

// Option configures a Tracker.
type Option func(*pendingTracker)

// WithMaxSize caps the number of tracked keys. Zero or negative disables the cap.
func WithMaxSize(maxSize int) Option {
	return func(t *pendingTracker) {
		t.maxSize = maxSize
	}
}
