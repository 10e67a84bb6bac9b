// Package signing builds the HMAC-SHA1 Authorization header used by sources
// that accept signed requests.
package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HeaderName is the request header carrying the signed token.
const HeaderName = "Authorization"

// ErrMissingCredentials is returned when either key is empty. Callers treat
// it as "send unsigned requests".
var ErrMissingCredentials = errors.New("signing credentials not configured")

// Signer produces a fresh header value per request.
type Signer struct {
	publicKey string
	secret    []byte
	now       func() time.Time
}

// Option is a functional option for configuring the Signer.
type Option func(*Signer)

// WithClock sets the time source used for the timestamp segment.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Signer from a public key and a standard base64 encoded secret.
func New(publicKey, secretKey string, opts ...Option) (*Signer, error) {
	if publicKey == "" || secretKey == "" {
		return nil, ErrMissingCredentials
	}
	secret, err := base64.StdEncoding.DecodeString(secretKey)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	s := &Signer{
		publicKey: publicKey,
		secret:    secret,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Header returns the header value for route, stamped with the current time.
func (s *Signer) Header(route, user string) string {
	return s.HeaderAt(route, user, s.now().Unix())
}

// HeaderAt returns the header value for a fixed unix timestamp.
// The format is "h=<public>|<user>|<ts>; s=<signature>" with empty
// segments left out.
func (s *Signer) HeaderAt(route, user string, timestamp int64) string {
	ts := strconv.FormatInt(timestamp, 10)
	signature := s.sign(joinNonEmpty(s.publicKey, user, ts, route))
	return fmt.Sprintf("h=%s; s=%s", joinNonEmpty(s.publicKey, user, ts), signature)
}

func (s *Signer) sign(payload string) string {
	mac := hmac.New(sha1.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "|")
}
