package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/enumm/identity/pkg/response"
)

// Health reports readiness, pinging the database when a handle is supplied.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
				return
			}
		}

		response.JSON(c, http.StatusOK, gin.H{"status": "UP"})
	}
}
