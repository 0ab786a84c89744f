package participant

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"refcontest/entity"
	"refcontest/lib/api/response"
	"refcontest/lib/sl"
)

type Core interface {
	Stats(ctx context.Context, userID int64) (entity.ParticipantStats, error)
}

func Stats(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logger.With(
			sl.Module("http.handlers.participant"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("participant_id", id),
		)

		userID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || userID <= 0 {
			log.Warn("invalid participant id")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid participant id"))
			return
		}

		stats, err := handler.Stats(r.Context(), userID)
		if err != nil {
			log.Error("participant stats", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Participant stats not available"))
			return
		}
		if stats.Participant == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Participant not found"))
			return
		}
		render.JSON(w, r, response.Ok(stats))
	}
}
