package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type acceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordResetRequest struct {
	Username string `json:"username" binding:"required"`
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type inviteUserRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role" binding:"required"`
}

func registerAuthRoutes(g *gin.RouterGroup) {
	auth := g.Group("/auth")

	auth.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondData(c, info)
	})

	auth.POST("/accept-invite", func(c *gin.Context) {
		var req acceptInviteRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.AcceptInvite(c.Request.Context(), req.Token, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	auth.POST("/password-reset/request", func(c *gin.Context) {
		var req passwordResetRequest
		if !bindJSON(c, &req) {
			return
		}
		// The token is mailed out of band; never leak whether the user exists.
		_, _ = models.RequestPasswordReset(c.Request.Context(), req.Username)
		respondData(c, gin.H{"requested": true})
	})

	auth.POST("/password-reset/confirm", func(c *gin.Context) {
		var req passwordResetConfirmRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.ResetPassword(c.Request.Context(), req.Token, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	session := auth.Group("")
	session.Use(middlewares.RequireSession())

	session.POST("/logout", func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, gin.H{"logged_out": ok})
	})

	session.GET("/me", func(c *gin.Context) {
		user, err := models.GetSessionUser(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondData(c, user)
	})

	session.POST("/change-password", func(c *gin.Context) {
		var req changePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	session.POST("/invite", func(c *gin.Context) {
		var req inviteUserRequest
		if !bindJSON(c, &req) {
			return
		}
		role, err := models.ParseUserRole(req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := models.InviteUser(c.Request.Context(), req.Username, req.Name, req.Email, role)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, gin.H{"invite_token": token})
	})
}
