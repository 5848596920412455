package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftflowhq/craftflow_backend/middlewares"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

func (a *App) register(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := models.RegisterUser(c.Request.Context(), a.db, &input)
	if err != nil {
		a.respondError(c, "auth.go", "register", err)
		return
	}

	token, err := utils.JwtGenerate(user.ID, user.Email)
	if err != nil {
		a.respondError(c, "auth.go", "register", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (a *App) login(c *gin.Context) {
	var input models.UserLogin
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := models.AuthenticateUser(c.Request.Context(), a.db, &input)
	if err != nil {
		// Do not reveal whether the account exists.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := utils.JwtGenerate(user.ID, user.Email)
	if err != nil {
		a.respondError(c, "auth.go", "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (a *App) me(c *gin.Context) {
	claim := middlewares.CtxValue(c.Request.Context())
	user, err := models.GetUser(c.Request.Context(), a.db, claim.UserId)
	if err != nil {
		a.respondError(c, "auth.go", "me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
