package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/khanghh/linkbot/params"
)

// AuthRecord is one issued authentication attempt. Digest is always derived
// from the other four fields and never set independently; records are created
// fresh per request, written once to the audit log and then discarded.
type AuthRecord struct {
	Username  string
	UserID    int64
	Timestamp float64 // issuance time, seconds since epoch
	Nonce     string  // 16 random bytes, lowercase hex
	Digest    string  // SHA-256 over HashInput, lowercase hex
}

// HashInput returns the canonical string the digest is computed over:
// <username>,<userid>,<timestamp>,<nonce>
func (r *AuthRecord) HashInput() string {
	return fmt.Sprintf("%s,%d,%s,%s", r.Username, r.UserID, FormatTimestamp(r.Timestamp), r.Nonce)
}

// AuditLine returns the hash input plus the digest, the auth.log line format:
// <username>,<userid>,<timestamp>,<nonce>,<digest>
func (r *AuthRecord) AuditLine() string {
	return r.HashInput() + "," + r.Digest
}

// FormatTimestamp renders an epoch timestamp with the shortest decimal
// representation that round-trips, without switching to exponent notation.
func FormatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}

// Issue creates a fresh auth record for the given identity. The nonce comes
// from crypto/rand; a failed read is returned as an error so the caller can
// abort instead of issuing a token backed by weak randomness.
func Issue(username string, userID int64) (*AuthRecord, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	nonce := make([]byte, params.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read random nonce: %w", err)
	}
	record := &AuthRecord{
		Username:  username,
		UserID:    userID,
		Timestamp: float64(time.Now().UnixMicro()) / 1e6,
		Nonce:     hex.EncodeToString(nonce),
	}
	digest := sha256.Sum256([]byte(record.HashInput()))
	record.Digest = hex.EncodeToString(digest[:])
	return record, nil
}
