package entity

// SubscriberState is a chat's state in the bot dialog.
type SubscriberState string

const (
	StateIdle       SubscriberState = "idle"       // in the main menu
	StateFraming    SubscriberState = "framing"    // receives live guidance
	StateProcessing SubscriberState = "processing" // a photo is being assessed
)

// Subscriber is a Telegram chat talking to the bot.
type Subscriber struct {
	ID     int64           // Telegram User ID
	ChatID int64           // Telegram Chat ID
	State  SubscriberState // current dialog state
}

// NewSubscriber creates a subscriber in the idle state.
func NewSubscriber(userID, chatID int64) *Subscriber {
	return &Subscriber{
		ID:     userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState updates the subscriber state.
func (s *Subscriber) SetState(state SubscriberState) {
	s.State = state
}

// ReceivesGuidance reports whether live guidance should be pushed to this chat.
func (s *Subscriber) ReceivesGuidance() bool {
	return s.State == StateFraming
}
