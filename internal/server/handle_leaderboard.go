package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardLimit    = 50
	leaderboardCacheKey = "leaderboard:global"
	leaderboardCacheTTL = 30 * time.Second
)

type leaderboardResponse struct {
	Scope   string             `json:"scope"`
	Entries []LeaderboardEntry `json:"entries"`
}

// handleLeaderboard returns the XP ranking. The global board is cached in
// redis for a short TTL; the friends board is always computed fresh. With
// no redis client the cache is simply skipped.
func handleLeaderboard(logger *slog.Logger, store Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		scope := r.URL.Query().Get("scope")
		if scope == "" {
			scope = "global"
		}

		switch scope {
		case "friends":
			entries, err := store.FriendLeaderboard(r.Context(), sess.UserID, leaderboardLimit)
			if err != nil {
				logger.Error("loading friend leaderboard", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeJSON(w, http.StatusOK, leaderboardResponse{Scope: scope, Entries: entries})

		case "global":
			if rdb != nil {
				if cached, err := rdb.Get(r.Context(), leaderboardCacheKey).Bytes(); err == nil {
					var entries []LeaderboardEntry
					if json.Unmarshal(cached, &entries) == nil {
						writeJSON(w, http.StatusOK, leaderboardResponse{Scope: scope, Entries: entries})
						return
					}
				}
			}

			entries, err := store.TopProfiles(r.Context(), leaderboardLimit)
			if err != nil {
				logger.Error("loading leaderboard", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			if rdb != nil {
				if data, err := json.Marshal(entries); err == nil {
					if err := rdb.Set(r.Context(), leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
						logger.Warn("caching leaderboard", "error", err)
					}
				}
			}
			writeJSON(w, http.StatusOK, leaderboardResponse{Scope: scope, Entries: entries})

		default:
			writeError(w, http.StatusUnprocessableEntity, "scope must be global or friends")
		}
	}
}
