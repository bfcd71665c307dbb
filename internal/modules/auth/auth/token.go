package auth

import (
	"github.com/gin-gonic/gin"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
)

func setAuthTokenCookie(c *gin.Context, token string, remember bool) {
	maxAge := int(sessionpkg.DefaultTTL.Seconds())
	if remember {
		maxAge = int(sessionpkg.RememberTTL.Seconds())
	}
	secure := c.Request.TLS != nil
	c.SetCookie("sf-token", token, maxAge, "/", "", secure, false)
}

func clearAuthTokenCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetCookie("sf-token", "", -1, "/", "", secure, false)
}
