package credentials

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const claimVisitor = "vid"

// Sealer encrypts the visitor id into the cookie value (PASETO v4.local) so
// that ids cannot be guessed or forged by the browser.
type Sealer struct {
	key    paseto.V4SymmetricKey
	ttl    time.Duration
	parser paseto.Parser
}

// NewSealer loads the key from hex. An empty key generates a random one,
// which invalidates every visitor cookie on restart.
func NewSealer(keyHex string, ttl time.Duration) (*Sealer, error) {
	var key paseto.V4SymmetricKey
	if h := strings.TrimSpace(keyHex); h != "" {
		k, err := paseto.V4SymmetricKeyFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid cookie key: %w", err)
		}
		key = k
	} else {
		slog.Warn("credentials.cookie_key_hex not set, using an ephemeral key")
		key = paseto.NewV4SymmetricKey()
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	p := paseto.NewParser()
	p.AddRule(paseto.NotExpired())

	return &Sealer{key: key, ttl: ttl, parser: p}, nil
}

func (s *Sealer) TTL() time.Duration { return s.ttl }

func (s *Sealer) Seal(visitorID string) string {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(s.ttl))
	tok.SetString(claimVisitor, visitorID)

	return tok.V4Encrypt(s.key, nil)
}

// Open returns the visitor id inside a sealed cookie value.
func (s *Sealer) Open(sealed string) (string, error) {
	tok, err := s.parser.ParseV4Local(s.key, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open visitor cookie: %w", err)
	}
	id, err := tok.GetString(claimVisitor)
	if err != nil || id == "" {
		return "", fmt.Errorf("visitor cookie has no id")
	}
	return id, nil
}

func NewVisitorID() string {
	return uuid.NewString()
}
