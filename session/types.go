package session

import "errors"

// Sender identifies which side of the conversation produced a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Delivery tracks a turn's journey through the optimistic-append
// protocol. User turns enter the transcript Pending before the model
// call resolves; bot turns and turns loaded from history are Confirmed
// from the start.
type Delivery int

const (
	DeliveryPending Delivery = iota
	DeliveryConfirmed
	DeliveryFailed
)

// String returns the delivery state name.
func (d Delivery) String() string {
	switch d {
	case DeliveryPending:
		return "pending"
	case DeliveryConfirmed:
		return "confirmed"
	case DeliveryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is one line of the transcript.
type Turn struct {
	Sender   Sender
	Text     string
	Delivery Delivery
}

// State is the manager's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateSending
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Degradation records why the initial history load fell back to an
// empty transcript, if it did.
type Degradation int

const (
	DegradedNone Degradation = iota
	DegradedUnprovisioned
	DegradedReadError
)

// String returns the degradation reason name.
func (d Degradation) String() string {
	switch d {
	case DegradedNone:
		return "none"
	case DegradedUnprovisioned:
		return "store unprovisioned"
	case DegradedReadError:
		return "history read failed"
	default:
		return "unknown"
	}
}

// Status is the manager's queryable condition.
type Status struct {
	State    State
	Degraded Degradation
}

// Fixed transcript notices. The three init notices are the only
// user-visible signal distinguishing a healthy empty history from a
// mis-provisioned or failing store, so their identities matter more
// than their wording.
const (
	// GreetingNotice opens a session that has no prior history.
	GreetingNotice = "Hello! How can I help you today?"

	// SetupIncompleteNotice opens a session whose history tables have
	// not been provisioned yet.
	SetupIncompleteNotice = "Welcome! Saved conversations are not set up yet, so this chat starts fresh. Run the setup command to enable history."

	// LoadFailedNotice opens a session whose history could not be read
	// for any other reason.
	LoadFailedNotice = "Welcome! Your saved history could not be loaded, so this conversation starts fresh."

	// ClearedNotice is the sole transcript entry after a successful
	// history reset.
	ClearedNotice = "History cleared. What would you like to do next?"

	// FallbackReply stands in for the model's answer when the gateway
	// call fails.
	FallbackReply = "Sorry, I could not generate a response. Please try again."
)

var (
	// ErrEmptyInput rejects empty or whitespace-only message text.
	ErrEmptyInput = errors.New("message text is empty")

	// ErrBusy rejects a send or reset while an exchange is outstanding.
	// Calls are rejected, not queued.
	ErrBusy = errors.New("a message exchange is already in flight")

	// ErrNotInitialized rejects operations before Init has run.
	ErrNotInitialized = errors.New("session not initialized")
)
