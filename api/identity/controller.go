// Package identity serves registration, login and the current user's account.
package identity

import (
	"net/http"

	"github.com/beka-birhanu/quill-api/api/apierr"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerUser)
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	me := route.Group("/users/me")
	{
		me.GET("", c.me)
		me.PUT("/password", c.changePassword)
	}
}

// registerUser handles user registration.
func (c *IdentityServer) registerUser(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newUserResponse(user))
}

// login handles user login.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}

	user, token, err := c.authService.SignIn(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}

	response := &AuthResponse{
		UserResponse: newUserResponse(user),
		Token:        token,
	}
	ctx.JSON(http.StatusOK, response)
}

func (c *IdentityServer) me(ctx *gin.Context) {
	userID := MustUserID(ctx)

	user, err := c.authService.Me(ctx.Request.Context(), userID)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newUserResponse(user))
}

func (c *IdentityServer) changePassword(ctx *gin.Context) {
	var request ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}

	err := c.authService.ChangePassword(ctx.Request.Context(), MustUserID(ctx), request.OldPassword, request.NewPassword)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
