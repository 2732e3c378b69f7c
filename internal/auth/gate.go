package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// Gate admits mutating actions only when a session token is present. It does
// not check the token with the backend; a rejected token surfaces as an API error.
type Gate struct {
	LoginPath string
}

func NewGate(loginPath string) Gate {
	return Gate{LoginPath: loginPath}
}

// Guard runs action once, synchronously, if s holds a token. Otherwise it
// navigates to the login view and reports false.
func (g Gate) Guard(s *Session, nav Navigator, action func()) bool {
	if !s.Present() {
		nav.Navigate(g.LoginPath)
		return false
	}
	action()
	return true
}

// RequireToken is the route-level form of Guard: without a token the request
// is redirected before any handler runs.
func (g Gate) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		g.Guard(FromContext(c), Redirector(c), c.Next)
	}
}

// Redirector navigates by answering c with a 303 and aborting the chain.
func Redirector(c *gin.Context) Navigator {
	return ginNavigator{c: c}
}

type ginNavigator struct {
	c *gin.Context
}

func (n ginNavigator) Navigate(path string) {
	n.c.Redirect(http.StatusSeeOther, path)
	n.c.Abort()
}
