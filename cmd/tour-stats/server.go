package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hojin-kr/kto-tour-client/pkg/pagination"
	"github.com/hojin-kr/kto-tour-client/pkg/stats"
	"github.com/hojin-kr/kto-tour-client/pkg/tourapi"
)

type server struct {
	api        *tourapi.Service
	aggregator *stats.Aggregator
	logger     zerolog.Logger
}

func newServer(api *tourapi.Service, aggregator *stats.Aggregator, logger zerolog.Logger) *server {
	return &server{
		api:        api,
		aggregator: aggregator,
		logger:     logger.With().Str("component", "http").Logger(),
	}
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/areas", s.handleAreas)
		r.Get("/search", s.handleSearch)
		r.Get("/places/{contentID}", s.handleDetail)
		r.Get("/places/{contentID}/intro", s.handleIntro)
		r.Get("/places/{contentID}/images", s.handleImages)
		r.Get("/places/{contentID}/pet", s.handlePetInfo)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/regions", s.handleRegionStats)
			r.Get("/categories", s.handleCategoryStats)
			r.Get("/summary", s.handleSummary)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.api.LookupAreas(r.Context(), r.URL.Query().Get("parent"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, areas)
}

type pagedItems struct {
	Items      []tourapi.TourItem  `json:"items"`
	Pagination pagination.Metadata `json:"pagination"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := s.api.SearchByKeywordPaged(r.Context(), tourapi.SearchParams{
		Keyword:       query.Get("keyword"),
		AreaCode:      query.Get("areaCode"),
		ContentTypeID: query.Get("contentTypeId"),
		NumOfRows:     intQuery(query.Get("numOfRows"), 10),
		PageNo:        intQuery(query.Get("pageNo"), 1),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pagedItems{Items: items, Pagination: meta})
}

func (s *server) handleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.api.GetDetail(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if detail == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *server) handleIntro(w http.ResponseWriter, r *http.Request) {
	intro, err := s.api.GetIntro(r.Context(), chi.URLParam(r, "contentID"), r.URL.Query().Get("contentTypeId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if intro == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, intro)
}

func (s *server) handleImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.api.GetImages(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, images)
}

func (s *server) handlePetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.api.GetPetInfo(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if info == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *server) handleRegionStats(w http.ResponseWriter, r *http.Request) {
	entries, err := s.aggregator.ComputeRegionStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	entries, err := s.aggregator.ComputeCategoryStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.aggregator.ComputeSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

// writeError maps caller mistakes to 400 and upstream failures to 502. The
// consuming UI presents 502s as a retryable error state.
func (s *server) writeError(w http.ResponseWriter, err error) {
	var validationErr *tourapi.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Warn().Err(err).Msg("Upstream request failed")
	http.Error(w, "upstream request failed", http.StatusBadGateway)
}

func intQuery(value string, defaultValue int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
