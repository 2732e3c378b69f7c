package auth

import (
	"crypto/sha256"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/hkdf"
)

const (
	// TokenCookie is the cookie holding the session token.
	TokenCookie = "token"
	// TokenTTL is the fixed lifetime of the token cookie.
	TokenTTL = 7 * 24 * time.Hour

	tokenKey   = "token"
	contextKey = "auth.session"
)

// Session is the request's view of the login state. It is loaded once per
// request by LoadSession and replaced by Persist and Invalidate.
type Session struct {
	Token string
}

// Present reports whether a token is held. Expiry is enforced by the cookie.
func (s *Session) Present() bool {
	return s != nil && s.Token != ""
}

// NewCookieStore derives the cookie signing and encryption keys from secret.
func NewCookieStore(secret string) (cookie.Store, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("catalog-console cookies"))
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, err
	}

	store := cookie.NewStore(hashKey, blockKey)
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return store, nil
}

// LoadSession puts the request's *Session into the gin context.
// It must run after sessions.SessionsMany registered TokenCookie.
func LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, _ := sessions.DefaultMany(c, TokenCookie).Get(tokenKey).(string)
		c.Set(contextKey, &Session{Token: tok})
		c.Next()
	}
}

// FromContext returns the session loaded for c; never nil.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return &Session{}
}

// Persist stores token in the token cookie for TokenTTL.
func Persist(c *gin.Context, token string) error {
	sess := sessions.DefaultMany(c, TokenCookie)
	sess.Set(tokenKey, token)
	sess.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(TokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if err := sess.Save(); err != nil {
		return err
	}
	c.Set(contextKey, &Session{Token: token})
	return nil
}

// Invalidate drops the token cookie.
func Invalidate(c *gin.Context) error {
	sess := sessions.DefaultMany(c, TokenCookie)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	c.Set(contextKey, &Session{})
	return sess.Save()
}
