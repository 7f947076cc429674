package handler

import (
	"context"
	"log"
	"net/http"
	"socialconnect-server/internal/model/requestresponse"
	"socialconnect-server/internal/util"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger : config.Database и config.RedisClient
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database Pinger
	redis    Pinger
}

func NewHealthHandler(database, redis Pinger) *HealthHandler {
	return &HealthHandler{database: database, redis: redis}
}

// Health godoc
// @Summary Состояние сервиса
// @Description Проверяет соединение с PostgreSQL и Redis
// @Tags Health
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse
// @Failure 500 {object} requestresponse.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := requestresponse.HealthResponse{
		Status:   "healthy",
		Database: ping(ctx, "database", h.database),
		Redis:    ping(ctx, "redis", h.redis),
	}

	status := http.StatusOK
	if resp.Database != "connected" || resp.Redis != "connected" {
		resp.Status = "unhealthy"
		status = http.StatusInternalServerError
	}

	util.WriteJSON(w, status, resp)
}

func ping(ctx context.Context, name string, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		log.Printf("[Health] %s недоступна: %v", name, err)
		return "disconnected"
	}
	return "connected"
}
