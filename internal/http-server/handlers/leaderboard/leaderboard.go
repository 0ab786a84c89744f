package leaderboard

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"refcontest/entity"
	"refcontest/lib/api/response"
	"refcontest/lib/sl"
	"refcontest/lib/validate"
)

type Core interface {
	Top(ctx context.Context, n int) ([]entity.LeaderboardRow, error)
}

type query struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// Top returns the leaderboard; ?limit=N selects the size, default is the configured one.
func Top(logger *slog.Logger, handler Core, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.leaderboard"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := query{Limit: defaultLimit}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid limit"))
				return
			}
			q.Limit = n
		}
		if err := validate.Struct(q); err != nil {
			log.With(sl.Err(err)).Debug("bad leaderboard query")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		rows, err := handler.Top(r.Context(), q.Limit)
		if err != nil {
			log.Error("leaderboard", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Leaderboard not available"))
			return
		}
		render.JSON(w, r, response.List(rows, len(rows)))
	}
}
