// Package link formats the pre-filled external form URL that carries an
// issued auth token.
package link

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Builder substitutes identity and digest into a fixed form URL template.
// The template uses {username}, {userid} and {auth_token} placeholders.
type Builder struct {
	template string
}

func NewBuilder(template string) *Builder {
	return &Builder{template: template}
}

// Build returns the absolute form URL for the given identity and digest.
// The username is percent-encoded for safe inclusion as a query parameter;
// userid and digest are already URL-safe and inserted as literal text.
func (b *Builder) Build(username string, userID int64, digest string) (string, error) {
	if !utf8.ValidString(username) {
		return "", ErrInvalidEncoding
	}
	replacer := strings.NewReplacer(
		"{username}", url.QueryEscape(username),
		"{userid}", strconv.FormatInt(userID, 10),
		"{auth_token}", digest,
	)
	return replacer.Replace(b.template), nil
}
