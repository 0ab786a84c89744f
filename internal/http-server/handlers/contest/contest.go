package contest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"refcontest/entity"
	"refcontest/lib/api/response"
	"refcontest/lib/sl"
)

type Core interface {
	Summary(ctx context.Context) (*entity.ContestSummary, error)
}

func Status(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := handler.Summary(r.Context())
		if err != nil {
			logger.With(
				sl.Module("http.handlers.contest"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Error("contest summary", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Contest status not available"))
			return
		}
		render.JSON(w, r, response.Ok(summary))
	}
}
