package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"book-recs/internal/app"
	"book-recs/internal/httputil"
	"book-recs/internal/logger"
	"book-recs/internal/queue"
	"book-recs/internal/recommend"
	"book-recs/internal/store"
)

type rankRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	TopK     *int   `json:"top_k"`
}

type webRequest struct {
	TargetID      string          `json:"target_id" validate:"required"`
	TopK          *int            `json:"top_k"`
	Seed          *recommend.Seed `json:"seed"`
	ExcludeTitles []string        `json:"exclude_titles"`
}

type indexTaskPayload struct {
	ItemID string `json:"item_id"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	svc := recommend.NewService(
		deps.Store,
		recommend.NewFetcher(deps.Search, logger.WithComponent(deps.Log, "fetcher")),
		recommend.NewDeduper(deps.History, logger.WithComponent(deps.Log, "dedup")),
		deps.Log,
	)
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/recommendations/rank", rankHandler(deps, svc))
	r.Post("/api/recommendations/web", webHandler(deps, svc))
	r.Post("/api/items/{id}/index", indexHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("recommender service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func rankHandler(deps app.Deps, svc *recommend.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		recs, err := svc.Rank(r.Context(), req.TargetID, resolveTopK(req.TopK))
		if err != nil {
			failRecommend(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"target_id":       req.TargetID,
			"recommendations": recs,
		})
	}
}

func webHandler(deps app.Deps, svc *recommend.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req webRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		recs, err := svc.WebRecommend(r.Context(), req.TargetID, resolveTopK(req.TopK), req.Seed, req.ExcludeTitles)
		if err != nil {
			failRecommend(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"target_id":       req.TargetID,
			"recommendations": recs,
		})
	}
}

func indexHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := r.Context()

		if _, err := deps.Store.Get(ctx, id); err != nil {
			failRecommend(deps, w, err)
			return
		}

		payload, err := json.Marshal(indexTaskPayload{ItemID: id})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to encode task", err, http.StatusInternalServerError)
			return
		}
		task := queue.Task{
			ID:      uuid.New(),
			Type:    queue.TaskTypeIndex,
			Payload: payload,
		}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			httputil.Fail(deps.Log, w, "failed to enqueue indexing task", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"item_id": id,
			"task_id": task.ID,
		})
	}
}

// resolveTopK applies the default when top_k is absent. Out-of-range values
// are clamped downstream rather than rejected.
func resolveTopK(topK *int) int {
	if topK == nil {
		return recommend.DefaultTopK
	}
	return *topK
}

func failRecommend(deps app.Deps, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		httputil.Fail(deps.Log, w, "item not found", err, http.StatusNotFound)
	case errors.Is(err, store.ErrEmbeddingNotFound):
		httputil.Fail(deps.Log, w, "item not indexed", err, http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httputil.Fail(deps.Log, w, "request canceled", err, http.StatusServiceUnavailable)
	default:
		httputil.Fail(deps.Log, w, "recommendation failed", err, http.StatusInternalServerError)
	}
}
