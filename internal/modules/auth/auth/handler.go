package auth

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/middleware"
	"github.com/commercekit/storefront-core/internal/pkg/password"
	"github.com/commercekit/storefront-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/sign-out", middleware.OptionalAuth(h.svc.db), h.signOut)
	a.POST("/verify-email", h.verifyEmail)
	a.POST("/resend-verification", h.resendVerification)
	a.POST("/forgot-password", h.forgotPassword)
	a.POST("/reset-password", h.resetPassword)
	a.GET("/password-strength", h.passwordStrength)

	tok := a.Group("/token", authMW)
	tok.GET("", h.listTokens)
	tok.POST("", h.createToken)
	tok.DELETE("/:id", h.deleteToken)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		switch {
		case errors.Is(err, errWeakPassword):
			response.ValidationFailed(c, "password does not meet the strength requirement", []response.Issue{
				{Field: "password", Message: "choose a stronger password"},
			})
		case errors.Is(err, errEmailTaken):
			response.Conflict(c, "email already registered")
		case errors.Is(err, errUsernameTaken):
			response.Conflict(c, "username already taken")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, userSummary{
		ID: u.ID, Email: u.Email, Username: u.Username,
		Name: u.Name, Role: u.Role, EmailVerified: u.EmailVerified,
	})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(&dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound), errors.Is(err, errWrongPassword):
			response.ForbiddenMsg(c, "invalid email or password")
		case errors.Is(err, errUserBanned):
			response.ForbiddenMsg(c, "account is suspended")
		default:
			response.InternalError(c, err)
		}
		return
	}
	setAuthTokenCookie(c, token, dto.RememberMe)
	response.OK(c, loginResponse{
		Token: token,
		User: userSummary{
			ID: u.ID, Email: u.Email, Username: u.Username,
			Name: u.Name, Role: u.Role, Avatar: u.Avatar,
			EmailVerified: u.EmailVerified,
		},
		Redirect: "/dashboard",
	})
}

func (h *Handler) signOut(c *gin.Context) {
	h.svc.SignOut(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	clearAuthTokenCookie(c)
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var dto VerifyEmailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.VerifyEmail(dto.Token); err != nil {
		if errors.Is(err, errVerifyTokenInvalid) {
			response.NotFoundMsg(c, "verification token invalid or expired")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"verified": true})
}

func (h *Handler) resendVerification(c *gin.Context) {
	var dto ResendVerificationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ResendVerification(dto.Email); err != nil {
		response.InternalError(c, err)
		return
	}
	// Same response whether or not the address exists.
	response.OK(c, gin.H{"message": "if the address needs verification, a mail is on its way"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var dto ForgotPasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ForgotPassword(dto.Email); err != nil {
		response.InternalError(c, err)
		return
	}
	// Same response whether or not the address exists.
	response.OK(c, gin.H{"message": "if an account exists for that address, a reset mail is on its way"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var dto ResetPasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ResetPassword(dto.Token, dto.Password); err != nil {
		switch {
		case errors.Is(err, errWeakPassword):
			response.ValidationFailed(c, "password does not meet the strength requirement", []response.Issue{
				{Field: "password", Message: "choose a stronger password"},
			})
		case errors.Is(err, errVerifyTokenInvalid):
			response.NotFoundMsg(c, "reset token invalid or expired")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, gin.H{"reset": true})
}

func (h *Handler) passwordStrength(c *gin.Context) {
	response.OK(c, password.Evaluate(c.Query("password")))
}

func (h *Handler) listTokens(c *gin.Context) {
	tokens, err := h.svc.ListTokens(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		items[i] = tokenResponse{
			ID: t.ID, Name: t.Name, Token: t.Token,
			Expired: t.ExpiredAt, Created: t.CreatedAt,
		}
	}
	response.OK(c, gin.H{"data": items})
}

func (h *Handler) createToken(c *gin.Context) {
	var dto CreateTokenDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.CreateToken(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, tokenResponse{
		ID: t.ID, Name: t.Name, Token: t.Token,
		Expired: t.ExpiredAt, Created: t.CreatedAt,
	})
}

func (h *Handler) deleteToken(c *gin.Context) {
	if err := h.svc.DeleteToken(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.NoContent(c)
}
