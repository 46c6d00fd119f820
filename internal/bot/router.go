// Package bot routes inbound platform events to token issuance, the audit
// trail and outbound messages.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/khanghh/linkbot/internal/audit"
	"github.com/khanghh/linkbot/internal/link"
	"github.com/khanghh/linkbot/internal/token"
	"github.com/khanghh/linkbot/params"
)

// Router dispatches typed platform events. Apart from the bot's own identity,
// captured on Connected, it is stateless across events.
type Router struct {
	platform    Platform
	auditLog    *audit.Logger
	links       *link.Builder
	testGuildID int64
	magicUserID int64

	botUserID int64 // set on Connected
}

func NewRouter(platform Platform, auditLog *audit.Logger, links *link.Builder, testGuildID, magicUserID int64) *Router {
	return &Router{
		platform:    platform,
		auditLog:    auditLog,
		links:       links,
		testGuildID: testGuildID,
		magicUserID: magicUserID,
	}
}

// Dispatch handles a single event to completion. An error aborts only the
// current event; it is logged to the console and never crashes the process,
// and no error reply is sent to the triggering user.
func (r *Router) Dispatch(ctx context.Context, event Event) {
	var err error
	switch ev := event.(type) {
	case Connected:
		err = r.handleConnected(ev)
	case MessageReceived:
		err = r.handleMessage(ctx, ev)
	case ReactionAdded:
		err = r.handleReaction(ctx, ev)
	}
	if err != nil {
		slog.Error("Event handling failed", "event", fmt.Sprintf("%T", event), "error", err)
	}
}

func (r *Router) handleConnected(ev Connected) error {
	r.botUserID = ev.BotUserID
	if err := r.auditLog.Record(audit.DestMain, fmt.Sprintf("%s has connected to Discord!", ev.BotUsername)); err != nil {
		return err
	}
	for _, guild := range ev.Guilds {
		banner := fmt.Sprintf("Connected to %s (id: %d)", guild.Name, guild.ID)
		if guild.ID == r.testGuildID {
			banner += " (TEST SERVER)"
		}
		if err := r.auditLog.Record(audit.DestMain, banner); err != nil {
			return err
		}
	}
	return nil
}

// handleMessage responds to DMs, and magic trigger messages in guilds.
func (r *Router) handleMessage(ctx context.Context, ev MessageReceived) error {
	// never respond to the bot's own messages
	if ev.AuthorID == r.botUserID {
		return nil
	}
	if ev.GuildID == 0 {
		msg := fmt.Sprintf("received DM from %s, sending authenticated link", ev.AuthorUsername)
		if err := r.auditLog.Record(audit.DestMain, msg); err != nil {
			return err
		}
		return r.sendAuthenticatedLink(ctx, ev.AuthorID, ev.AuthorUsername)
	}
	if ev.AuthorID == r.magicUserID && strings.Contains(ev.Content, params.MagicTriggerPhrase) {
		if err := r.auditLog.Record(audit.DestMain, "Detected the magic trigger from the magic user. Sending special message!"); err != nil {
			return err
		}
		reply := fmt.Sprintf(params.AnnouncementMessage, r.magicUserID)
		if err := r.platform.Reply(ctx, ev.ChannelID, ev.MessageID, reply); err != nil {
			return fmt.Errorf("reply to magic trigger: %w", err)
		}
	}
	return nil
}

// handleReaction responds to reactions on the bot's own messages by sending
// the reacting user an authenticated link in DMs.
func (r *Router) handleReaction(ctx context.Context, ev ReactionAdded) error {
	message, err := r.platform.FetchMessage(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		return fmt.Errorf("fetch message %d: %w", ev.MessageID, err)
	}
	if message.AuthorID != r.botUserID {
		return nil
	}
	user, err := r.platform.FetchUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("fetch user %d: %w", ev.UserID, err)
	}
	msg := fmt.Sprintf("observed reaction on my post from %s, sending authenticated link", user.Username)
	if err := r.auditLog.Record(audit.DestMain, msg); err != nil {
		return err
	}
	return r.sendAuthenticatedLink(ctx, user.ID, user.Username)
}

// sendAuthenticatedLink issues a fresh token for the user, records it in the
// auth log and delivers the pre-filled form URL via direct message.
func (r *Router) sendAuthenticatedLink(ctx context.Context, userID int64, username string) error {
	if err := r.auditLog.Record(audit.DestMain, fmt.Sprintf("starting authentication request for %s (id=%d)", username, userID)); err != nil {
		return err
	}
	record, err := token.Issue(username, userID)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	if err := r.auditLog.Record(audit.DestAuth, record.AuditLine()); err != nil {
		return err
	}
	formURL, err := r.links.Build(username, userID, record.Digest)
	if err != nil {
		return fmt.Errorf("build form link: %w", err)
	}
	content := fmt.Sprintf(params.AuthenticatedLinkMessage,
		userID, userID, token.FormatTimestamp(record.Timestamp), record.Nonce, record.Digest, record.HashInput(), formURL)
	if err := r.platform.SendDirectMessage(ctx, userID, content); err != nil {
		return fmt.Errorf("send authenticated link: %w", err)
	}
	return nil
}
