package health

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"refcontest/entity"
	"refcontest/lib/api/response"
)

type Core interface {
	Summary(ctx context.Context) (*entity.ContestSummary, error)
}

type status struct {
	Status  string               `json:"status"`
	Contest entity.ContestStatus `json:"contest"`
}

// Health reports 503 when the store cannot be read.
func Health(handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := handler.Summary(r.Context())
		if err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Store unavailable"))
			return
		}
		render.JSON(w, r, response.Ok(status{Status: "ok", Contest: summary.Status}))
	}
}
