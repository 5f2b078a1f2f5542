package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/infra"
	"github.com/Renatopaccha/Dental-Gest/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health godoc
// @Summary      Estado del servicio
// @Description  Conectividad con Postgres y Redis. El estado del correo es informativo.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	deadLetters := worker.NewDeadLetters(rdb)
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		email := gin.H{"circuit": "disabled"}
		if smtpCB != nil {
			email["circuit"] = smtpCB.Snapshot()
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			email["dead_letters"], _ = deadLetters.Len(ctx, worker.QueueEmail)
			if last, err := deadLetters.Recent(ctx, worker.QueueEmail, 1); err == nil && len(last) == 1 {
				email["last_failure"] = gin.H{"reason": last[0].Reason, "at": last[0].FailedAt}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"email": email,
		})
	}
}
