package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
)

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
}

func handleHealth(logger *slog.Logger, db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", DB: "ok", Redis: "ok"}
		status := http.StatusOK

		if err := db.PingContext(r.Context()); err != nil {
			logger.Error("db health check failed", "error", err)
			resp.Status, resp.DB = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}

		if rdb == nil {
			resp.Redis = "disabled"
		} else if err := rdb.Ping(r.Context()).Err(); err != nil {
			logger.Error("redis health check failed", "error", err)
			resp.Status, resp.Redis = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, resp)
	}
}
