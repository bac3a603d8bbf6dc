package api

import (
	"net/http"
	"strconv"

	"applyflow/internal/db"
	"applyflow/internal/event"

	"github.com/gin-gonic/gin"
)

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryUint parses a required uint query parameter; writes a 400 and
// returns false when missing or malformed.
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Missing " + name}})
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid " + name}})
		return 0, false
	}
	return uint(n), true
}

func queryIntDefault(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid " + name}})
		return 0, false
	}
	return n, true
}

func queryLanguage(c *gin.Context) string {
	language := c.Query("language")
	if language == "" {
		language = "en"
	}
	return language
}

// requireEventAdmin enforces the event-admin capability for the current
// caller; writes a 403 and returns false when it's missing.
func requireEventAdmin(c *gin.Context, eventID uint) bool {
	ok, err := event.IsEventAdmin(db.DB, currentUserID(c), eventID, currentUserIsAdmin(c))
	if err != nil {
		writeError(c, err)
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Event admin rights required"}})
		return false
	}
	return true
}
