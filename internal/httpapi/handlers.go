package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/extract"
	"github.com/conlan-group/listings-cli/internal/model"
	"github.com/conlan-group/listings-cli/internal/resilience"
	"github.com/conlan-group/listings-cli/internal/store"
)

// resolveBudget bounds one address resolution across all query variants.
const resolveBudget = 20 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInput(w, "invalid request body")
		return
	}
	if req.URL == "" {
		writeInput(w, "url is required")
		return
	}
	if !model.SupportedListingURL(req.URL) {
		writeInput(w, "unsupported listing url")
		return
	}

	html, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		zap.L().Warn("listing fetch failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, err)
		return
	}

	record := extract.Extract(html, req.URL)
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInput(w, "invalid request body")
		return
	}
	if req.Address == "" {
		writeInput(w, "address is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), resolveBudget)
	defer cancel()

	res := s.resolver.Resolve(ctx, req.Address)
	if !res.Accepted {
		writeJSON(w, http.StatusNotFound, errorBody{
			Kind:  string(resilience.KindNotFound),
			Error: "address could not be resolved within the region",
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListHomes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ListingFilter{
		City:  q.Get("city"),
		State: q.Get("state"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeInput(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeInput(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	listings, err := s.store.ListListings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []model.StoredListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleGetHome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := s.store.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleSaveHome(w http.ResponseWriter, r *http.Request) {
	var listing model.StoredListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		writeInput(w, "invalid request body")
		return
	}
	if listing.Record.Address() == "" && listing.Record.Headline == "" {
		writeInput(w, "listing must carry an address or a headline")
		return
	}

	saved, err := s.store.SaveListing(r.Context(), listing)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteHome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteListing(r.Context(), id); err != nil {
		writeError(w, storeErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func storeErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return resilience.WithKind(resilience.KindNotFound, err)
	}
	return err
}
