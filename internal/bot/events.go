package bot

// Event is the closed set of platform events the router dispatches over.
// Events are constructed at the platform-adapter boundary so the router never
// touches SDK payloads directly.
type Event interface {
	isEvent()
}

type GuildInfo struct {
	ID   int64
	Name string
}

// Connected is delivered once the gateway handshake completes.
type Connected struct {
	BotUserID   int64
	BotUsername string
	Guilds      []GuildInfo
}

// MessageReceived covers both direct and guild messages. GuildID is zero for
// direct messages.
type MessageReceived struct {
	AuthorID       int64
	AuthorUsername string
	ChannelID      int64
	MessageID      int64
	GuildID        int64
	Content        string
}

// ReactionAdded is delivered for a reaction on any message the bot can see.
type ReactionAdded struct {
	ChannelID int64
	MessageID int64
	UserID    int64
}

func (Connected) isEvent()       {}
func (MessageReceived) isEvent() {}
func (ReactionAdded) isEvent()   {}
