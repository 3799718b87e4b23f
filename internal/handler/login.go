package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
)

type LoginHandler struct {
	Verifier *auth.Verifier
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login answers a failed credential match with 500, which clients of the
// login endpoint already depend on.
func (h *LoginHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	res, err := h.Verifier.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidLogin) {
			log.Printf("login: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": auth.ErrInvalidLogin.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}
