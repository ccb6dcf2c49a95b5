// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF token utilities.
//
// Context
//   Every panel page embeds a hidden `csrf_token` input generated at render
//   time.  The server verifies this token on POST to ensure the request
//   originated from a page it rendered.  The token is *stateless*:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – calculated with the configured `panel.csrf_key`.
//
//   Validation checks the signature and ensures the timestamp is within
//   MaxAge.  No server-side state is required, so any instance behind a load
//   balancer can verify a token issued by another one.
//
// Workflow
//   •  NewCSRF(key)      → verifier bound to one secret.
//   •  Token()           → token string for templates.
//   •  Verify(tok)       → constant-time verify; false on any failure.
//   •  Middleware(next)  → 403 on a POST without a valid token.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	FieldCSRF  = "csrf_token"
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	MaxAge     = 2 * time.Hour        // token valid window
)

// CSRF issues and verifies tokens for one secret.
type CSRF struct {
	secret []byte
	now    func() time.Time
}

// NewCSRF decodes key (base64url, at least 32 bytes).  An empty or short key
// is replaced by a random one, which invalidates tokens on restart.
func NewCSRF(key string) *CSRF {
	if b, err := base64.RawURLEncoding.DecodeString(key); err == nil && len(b) >= 32 {
		return &CSRF{secret: b, now: time.Now}
	}
	sec := make([]byte, 32)
	_, _ = rand.Read(sec)
	zap.S().Warnw("panel.csrf_key not set or shorter than 32 bytes, using a random key")
	return &CSRF{secret: sec, now: time.Now}
}

// Token creates a new CSRF token.  Call once per page render.
func (c *CSRF) Token() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok passes HMAC and age checks.
func (c *CSRF) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Future timestamp (clock skew) or older than MaxAge.
		return false
	}

	return hmac.Equal(sig, c.sign(nonce, tsBytes))
}

// Middleware rejects unsafe requests whose form lacks a valid token.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if !c.Verify(r.PostFormValue(FieldCSRF)) {
			http.Error(w, "invalid or expired form token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *CSRF) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
