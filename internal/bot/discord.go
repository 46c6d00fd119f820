package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/bwmarrin/snowflake"
)

// DiscordPlatform adapts a discordgo session to the Platform interface and
// translates gateway callbacks into the typed event set.
type DiscordPlatform struct {
	session *discordgo.Session
}

func NewDiscordPlatform(botToken string) (*DiscordPlatform, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	// handlers run to completion in gateway delivery order; handling of a
	// single event is never reentrant
	session.SyncEvents = true
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentMessageContent
	return &DiscordPlatform{session: session}, nil
}

// Attach registers the gateway handlers that feed the router. Must be called
// before Open.
func (p *DiscordPlatform) Attach(router *Router) {
	p.session.AddHandler(func(s *discordgo.Session, ev *discordgo.Ready) {
		guilds := make([]GuildInfo, 0, len(ev.Guilds))
		for _, guild := range ev.Guilds {
			guilds = append(guilds, GuildInfo{ID: parseID(guild.ID), Name: guild.Name})
		}
		router.Dispatch(context.Background(), Connected{
			BotUserID:   parseID(ev.User.ID),
			BotUsername: displayName(ev.User),
			Guilds:      guilds,
		})
	})
	p.session.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageCreate) {
		if ev.Author == nil {
			return
		}
		router.Dispatch(context.Background(), MessageReceived{
			AuthorID:       parseID(ev.Author.ID),
			AuthorUsername: displayName(ev.Author),
			ChannelID:      parseID(ev.ChannelID),
			MessageID:      parseID(ev.ID),
			GuildID:        parseID(ev.GuildID), // empty on DMs, parses to zero
			Content:        ev.Content,
		})
	})
	p.session.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageReactionAdd) {
		router.Dispatch(context.Background(), ReactionAdded{
			ChannelID: parseID(ev.ChannelID),
			MessageID: parseID(ev.MessageID),
			UserID:    parseID(ev.UserID),
		})
	})
}

// Open starts the gateway connection.
func (p *DiscordPlatform) Open() error {
	return p.session.Open()
}

func (p *DiscordPlatform) Close() error {
	return p.session.Close()
}

// Ready reports whether the gateway handshake has completed.
func (p *DiscordPlatform) Ready() bool {
	return p.session.DataReady
}

func (p *DiscordPlatform) FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error) {
	message, err := p.session.ChannelMessage(formatID(channelID), formatID(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	var authorID int64
	if message.Author != nil {
		authorID = parseID(message.Author.ID)
	}
	return &Message{
		ID:        parseID(message.ID),
		ChannelID: parseID(message.ChannelID),
		AuthorID:  authorID,
	}, nil
}

func (p *DiscordPlatform) FetchUser(ctx context.Context, userID int64) (*User, error) {
	user, err := p.session.User(formatID(userID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &User{ID: parseID(user.ID), Username: displayName(user)}, nil
}

func (p *DiscordPlatform) SendDirectMessage(ctx context.Context, userID int64, content string) error {
	channel, err := p.session.UserChannelCreate(formatID(userID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create DM channel: %w", err)
	}
	_, err = p.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return err
}

func (p *DiscordPlatform) Reply(ctx context.Context, channelID, messageID int64, content string) error {
	reference := &discordgo.MessageReference{
		ChannelID: formatID(channelID),
		MessageID: formatID(messageID),
	}
	_, err := p.session.ChannelMessageSendReply(formatID(channelID), content, reference, discordgo.WithContext(ctx))
	return err
}

// displayName renders a user as name#discriminator, or just the name for
// accounts migrated off the legacy discriminator system.
func displayName(user *discordgo.User) string {
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}

// parseID converts a Discord snowflake ID string to int64. The empty string
// (e.g. GuildID on a direct message) maps to zero.
func parseID(id string) int64 {
	if id == "" {
		return 0
	}
	sf, err := snowflake.ParseString(id)
	if err != nil {
		return 0
	}
	return int64(sf)
}

func formatID(id int64) string {
	return snowflake.ID(id).String()
}
