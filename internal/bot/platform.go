package bot

import "context"

// Message is the subset of a platform message the router cares about.
type Message struct {
	ID        int64
	ChannelID int64
	AuthorID  int64
}

// User is the subset of a platform user the router cares about.
type User struct {
	ID       int64
	Username string
}

// Platform is the outbound surface of the chat SDK. All calls return explicit
// errors; the router aborts the current event's handling on failure and never
// retries.
type Platform interface {
	FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error)
	FetchUser(ctx context.Context, userID int64) (*User, error)
	SendDirectMessage(ctx context.Context, userID int64, content string) error
	Reply(ctx context.Context, channelID, messageID int64, content string) error
}
