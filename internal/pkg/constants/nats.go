package constants

// NATS subjects
const (
	// SubjectLocationScored carries every persisted, scored location event
	SubjectLocationScored = "location.scored"
)
