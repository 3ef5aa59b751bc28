package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Estado do banco e do Redis
func HealthCheckHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	dbStatus := "ok"
	redisStatus := "disabled"

	if err := db.Exec("SELECT 1").Error; err != nil {
		dbStatus = "error"
	}

	if rdb != nil {
		redisStatus = "ok"
		if err := rdb.Ping(c).Err(); err != nil {
			redisStatus = "error"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
