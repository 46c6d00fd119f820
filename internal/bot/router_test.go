package bot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanghh/linkbot/internal/audit"
	"github.com/khanghh/linkbot/internal/link"
	"github.com/khanghh/linkbot/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBotID   = int64(100)
	testGuildID = int64(900)
	magicUserID = int64(777)
)

type sentMessage struct {
	targetID  int64 // user id for DMs, channel id for replies
	messageID int64
	content   string
}

type fakePlatform struct {
	messages map[int64]*Message
	users    map[int64]*User
	sentDMs  []sentMessage
	replies  []sentMessage
	fetchErr error
	sendErr  error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		messages: make(map[int64]*Message),
		users:    make(map[int64]*User),
	}
}

func (f *fakePlatform) FetchMessage(ctx context.Context, channelID, messageID int64) (*Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	message, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("message not found")
	}
	return message, nil
}

func (f *fakePlatform) FetchUser(ctx context.Context, userID int64) (*User, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (f *fakePlatform) SendDirectMessage(ctx context.Context, userID int64, content string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentDMs = append(f.sentDMs, sentMessage{targetID: userID, content: content})
	return nil
}

func (f *fakePlatform) Reply(ctx context.Context, channelID, messageID int64, content string) error {
	f.replies = append(f.replies, sentMessage{targetID: channelID, messageID: messageID, content: content})
	return nil
}

func newTestRouter(t *testing.T, platform Platform) (*Router, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "logs")
	auditLogger := audit.NewLogger(dir, nil)
	require.NoError(t, auditLogger.Open())
	t.Cleanup(func() { auditLogger.Close() })

	router := NewRouter(platform, auditLogger, link.NewBuilder(params.PrefillFormLinkTemplate), testGuildID, magicUserID)
	router.Dispatch(context.Background(), Connected{
		BotUserID:   testBotID,
		BotUsername: "linkbot#0001",
		Guilds: []GuildInfo{
			{ID: testGuildID, Name: "test server"},
			{ID: 901, Name: "other server"},
		},
	})
	return router, dir
}

func readLines(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// authLines strips the log timestamp prefix from every auth.log line.
func authLines(t *testing.T, dir string) []string {
	t.Helper()
	var lines []string
	for _, line := range readLines(t, dir, "auth.log") {
		_, record, found := strings.Cut(line, ": ")
		require.True(t, found, "malformed auth log line: %q", line)
		lines = append(lines, record)
	}
	return lines
}

func TestRouter_ConnectedBanner(t *testing.T) {
	_, dir := newTestRouter(t, newFakePlatform())

	lines := readLines(t, dir, "main.log")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "linkbot#0001 has connected to Discord!")
	assert.Contains(t, lines[1], "Connected to test server (id: 900) (TEST SERVER)")
	assert.Contains(t, lines[2], "Connected to other server (id: 901)")
	assert.NotContains(t, lines[2], "TEST SERVER")
}

func TestRouter_DirectMessage(t *testing.T) {
	platform := newFakePlatform()
	router, dir := newTestRouter(t, platform)

	router.Dispatch(context.Background(), MessageReceived{
		AuthorID:       5,
		AuthorUsername: "alice#0001",
		ChannelID:      10,
		MessageID:      11,
		Content:        "hi bot",
	})

	require.Len(t, platform.sentDMs, 1)
	dm := platform.sentDMs[0]
	assert.Equal(t, int64(5), dm.targetID)
	assert.Contains(t, dm.content, "Authenticated as <@5>.")
	assert.Contains(t, dm.content, "https://docs.google.com/forms/")

	records := authLines(t, dir)
	require.Len(t, records, 1)

	// the logged record must be verifiable: SHA-256 over the first four
	// comma-separated fields reproduces the fifth
	fields := strings.Split(records[0], ",")
	require.Len(t, fields, 5)
	assert.Equal(t, "alice#0001", fields[0])
	assert.Equal(t, "5", fields[1])
	sum := sha256.Sum256([]byte(strings.Join(fields[:4], ",")))
	assert.Equal(t, hex.EncodeToString(sum[:]), fields[4])
	assert.Contains(t, dm.content, fields[4])
}

func TestRouter_IgnoresOwnMessages(t *testing.T) {
	platform := newFakePlatform()
	router, dir := newTestRouter(t, platform)

	router.Dispatch(context.Background(), MessageReceived{
		AuthorID:       testBotID,
		AuthorUsername: "linkbot#0001",
		ChannelID:      10,
		MessageID:      11,
		Content:        "my own DM",
	})

	assert.Empty(t, platform.sentDMs)
	assert.Empty(t, authLines(t, dir))
}

func TestRouter_MagicTrigger(t *testing.T) {
	tests := []struct {
		name        string
		authorID    int64
		content     string
		wantReplies int
	}{
		{"magic user with trigger", magicUserID, "Hey everyone. " + params.MagicTriggerPhrase, 1},
		{"magic user without trigger", magicUserID, "just chatting", 0},
		{"other user with trigger", 5, params.MagicTriggerPhrase, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newFakePlatform()
			router, dir := newTestRouter(t, platform)

			router.Dispatch(context.Background(), MessageReceived{
				AuthorID:       tt.authorID,
				AuthorUsername: "someone#0001",
				ChannelID:      20,
				MessageID:      21,
				GuildID:        testGuildID,
				Content:        tt.content,
			})

			require.Len(t, platform.replies, tt.wantReplies)
			if tt.wantReplies > 0 {
				reply := platform.replies[0]
				assert.Equal(t, int64(20), reply.targetID)
				assert.Equal(t, int64(21), reply.messageID)
				assert.Contains(t, reply.content, "React to this message")
			}
			// the announcement alone never issues a token
			assert.Empty(t, platform.sentDMs)
			assert.Empty(t, authLines(t, dir))
		})
	}
}

func TestRouter_ReactionOnBotMessage(t *testing.T) {
	platform := newFakePlatform()
	platform.messages[50] = &Message{ID: 50, ChannelID: 10, AuthorID: testBotID}
	platform.users[5] = &User{ID: 5, Username: "bob#0002"}
	router, dir := newTestRouter(t, platform)

	router.Dispatch(context.Background(), ReactionAdded{ChannelID: 10, MessageID: 50, UserID: 5})

	require.Len(t, platform.sentDMs, 1)
	assert.Equal(t, int64(5), platform.sentDMs[0].targetID)
	require.Len(t, authLines(t, dir), 1)
	assert.True(t, strings.HasPrefix(authLines(t, dir)[0], "bob#0002,5,"))
}

func TestRouter_ReactionOnForeignMessage(t *testing.T) {
	platform := newFakePlatform()
	platform.messages[50] = &Message{ID: 50, ChannelID: 10, AuthorID: 42}
	router, dir := newTestRouter(t, platform)

	router.Dispatch(context.Background(), ReactionAdded{ChannelID: 10, MessageID: 50, UserID: 5})

	assert.Empty(t, platform.sentDMs)
	assert.Empty(t, authLines(t, dir))
}

func TestRouter_PlatformErrorAbortsEvent(t *testing.T) {
	platform := newFakePlatform()
	platform.fetchErr = errors.New("gateway hiccup")
	router, dir := newTestRouter(t, platform)

	// must not panic and must not issue anything
	router.Dispatch(context.Background(), ReactionAdded{ChannelID: 10, MessageID: 50, UserID: 5})

	assert.Empty(t, platform.sentDMs)
	assert.Empty(t, authLines(t, dir))
}

func TestRouter_SendFailureKeepsAuditEntry(t *testing.T) {
	platform := newFakePlatform()
	platform.sendErr = errors.New("user has DMs disabled")
	router, dir := newTestRouter(t, platform)

	router.Dispatch(context.Background(), MessageReceived{
		AuthorID:       5,
		AuthorUsername: "alice#0001",
		ChannelID:      10,
		MessageID:      11,
	})

	// issuance is recorded before delivery; a failed send does not erase it
	assert.Empty(t, platform.sentDMs)
	assert.Len(t, authLines(t, dir), 1)
}
