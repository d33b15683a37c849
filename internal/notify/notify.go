package notify

// Notifier delivers a wake notification to an external push channel. The
// native scheduler backend requires one; the restricted backend treats it as
// best-effort.
type Notifier interface {
	// Push sends a titled message. A returned error means the notification
	// was not delivered; the in-process fire callback still runs.
	Push(title, body string) error

	// Ready reports whether the notifier's credentials are usable. Called
	// once by the scheduler's permission probe.
	Ready() bool
}
