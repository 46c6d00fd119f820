package link

import (
	"net/url"
	"strings"
	"testing"

	"github.com/khanghh/linkbot/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigest = "cc9c23aefc6765ac878ad9ef776a7699eab9103a45025eaefcb58c5c2f21cf07"

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(params.PrefillFormLinkTemplate)
	got, err := builder.Build("alice#0001", 12345, testDigest)
	require.NoError(t, err)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "docs.google.com", parsed.Host)

	query := parsed.Query()
	entries := 0
	for key := range query {
		if strings.HasPrefix(key, "entry.") {
			entries++
		}
	}
	assert.Equal(t, 3, entries)
	assert.Equal(t, "alice#0001", query.Get("entry.1426369734"))
	assert.Equal(t, "12345", query.Get("entry.1675772246"))
	assert.Equal(t, testDigest, query.Get("entry.1231032926"))
}

func TestBuilder_UsernameRoundTrip(t *testing.T) {
	builder := NewBuilder(params.PrefillFormLinkTemplate)
	usernames := []string{
		"plain",
		"with space#1234",
		"amp&hash#and=equals",
		"ünïcödé#0042",
	}
	for _, username := range usernames {
		got, err := builder.Build(username, 1, testDigest)
		require.NoError(t, err)
		parsed, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, username, parsed.Query().Get("entry.1426369734"))
	}
}

func TestBuilder_InvalidEncoding(t *testing.T) {
	builder := NewBuilder(params.PrefillFormLinkTemplate)
	_, err := builder.Build("bad\xff\xfename", 1, testDigest)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
