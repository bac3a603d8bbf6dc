package api

import (
	"net/http"
	"time"

	"applyflow/internal/auth"
	"applyflow/internal/config"
	"applyflow/internal/db"
	"applyflow/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/login
func LoginHandler(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing email or password"}})
			return
		}
		var u user.AppUser
		if err := db.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid credentials"}})
			return
		}
		if err := user.CheckPassword(u.PasswordHash, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid credentials"}})
			return
		}
		token, err := auth.GenerateJWT(cfg.Server.JWTSecret, u.ID, u.Email, u.IsAdmin, 24*time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Token error"}})
			return
		}
		if err := auth.SetSession(rdb, u.ID, token, 30*time.Minute); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Session error"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":    u.ID,
			"email": u.Email,
			"token": token,
		})
	}
}

// POST /auth/logout
func LogoutHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = auth.DeleteSession(rdb, currentUserID(c))
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// GET /auth/me
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var u user.AppUser
		if err := db.DB.First(&u, currentUserID(c)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":        u.ID,
			"email":     u.Email,
			"firstname": u.Firstname,
			"lastname":  u.Lastname,
			"is_admin":  u.IsAdmin,
		})
	}
}
