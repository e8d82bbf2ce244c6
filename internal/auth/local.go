package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/utilities"
)

// RegisterHandler handles registration by receiving username and password.
// Rejects usernames already present in the database and passwords shorter
// than 8 characters.
func RegisterHandler(db *database.DBInstance) gin.HandlerFunc {
	return func(c *gin.Context) {
		var info struct {
			Username string  `json:"username" binding:"required"`
			Password string  `json:"password" binding:"required"`
			Email    *string `json:"email"`
		}

		if err := c.ShouldBindJSON(&info); err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Username and password must be provided",
			})
			return
		}

		var existing model.User
		err := db.Where("username = ?", info.Username).First(&existing).Error

		switch {
		case err == nil:
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Username already exist",
			})
			return

		case errors.Is(err, gorm.ErrRecordNotFound):
			// Do nothing

		default:
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Database error: %s", err.Error()),
			})
			return
		}

		if len(info.Password) < 8 {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Password should longer or equal to 8 characters",
			})
			return
		}

		hashedPassword, err := utilities.HashPassword(info.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
			})
			return
		}

		user := model.User{
			Username: info.Username,
			Email:    info.Email,
			Password: hashedPassword,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}

		accessToken, err := GenerateToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":         user,
			"access_token": accessToken,
		})
	}
}

// LoginHandler handles login by receiving username and password. Responds
// with the same message whether the username or the password is wrong.
func LoginHandler(db *database.DBInstance) gin.HandlerFunc {
	return func(c *gin.Context) {
		var info struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&info); err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Username or password is not provided",
			})
			return
		}

		var user model.User
		err := db.Where("username = ?", info.Username).First(&user).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Username or password is incorrect",
			})
			return

		case err == nil:
			// Do nothing

		default:
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Database error: %s", err.Error()),
			})
			return
		}

		if user.Password == "" || utilities.ComparePassword(user.Password, info.Password) != nil {
			c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Username or password is incorrect",
			})
			return
		}

		accessToken, err := GenerateToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"access_token": accessToken,
		})
	}
}
