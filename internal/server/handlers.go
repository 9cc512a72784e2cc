package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pricewatch/pricewatch/pkg/alerts"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/prices"
	"github.com/pricewatch/pricewatch/pkg/retailers"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// userID resolves the acting user. The server is meant for personal or
// small-team deployments behind basic auth, so identity is a plain
// header (X-User-ID) or query parameter, defaulting to user 1.
func userID(r *http.Request) int64 {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	if raw == "" {
		return 1
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 1
	}
	return id
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, alerts.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, retailers.ErrInvalidURL):
		status = http.StatusBadRequest
	case errors.Is(err, prices.ErrScrapeFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.DB.ListProducts(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []storage.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

type addProductRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product, err := s.Prices.AddProductFromURL(r.Context(), req.URL, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Prices.DeleteProduct(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkResponse struct {
	Product *storage.Product `json:"product"`
	Changed bool             `json:"changed"`
}

func (s *Server) handleCheckProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product, changed, err := s.Prices.RecheckPrice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Product: product, Changed: changed})
}

type batchCheckResponse struct {
	Updated []storage.Product `json:"updated"`
	Errors  []string          `json:"errors,omitempty"`
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	ids, err := s.DB.ListProductIDs(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, errs := s.Prices.CheckPricesForProducts(r.Context(), ids)
	resp := batchCheckResponse{Updated: updated}
	if resp.Updated == nil {
		resp.Updated = []storage.Product{}
	}
	for _, e := range errs {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyResponse struct {
	Points []storage.PricePoint `json:"points"`
	Stats  storage.PriceStats   `json:"stats"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	if _, err := s.DB.GetProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	points, err := s.DB.PriceHistory(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.DB.PriceStats(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if points == nil {
		points = []storage.PricePoint{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Points: points, Stats: stats})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := s.Alerts.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []storage.Alert{}
	}
	writeJSON(w, http.StatusOK, list)
}

type createAlertRequest struct {
	ProductID   int64   `json:"product_id"`
	TargetPrice float64 `json:"target_price"`
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TargetPrice <= 0 {
		http.Error(w, "target_price must be positive", http.StatusBadRequest)
		return
	}
	alert, err := s.Alerts.Create(r.Context(), userID(r), req.ProductID, req.TargetPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

type updateAlertRequest struct {
	TargetPrice float64 `json:"target_price"`
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req updateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TargetPrice <= 0 {
		http.Error(w, "target_price must be positive", http.StatusBadRequest)
		return
	}
	if err := s.Alerts.UpdateTarget(r.Context(), userID(r), id, req.TargetPrice); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleResetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Alerts.Reset(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Alerts.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams the caller's notification channel as
// server-sent events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	channel := notify.UserChannel(userID(r))
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid product_id", http.StatusBadRequest)
			return
		}
		channel = notify.ProductChannel(id)
	}

	events, cancel := s.Hub.Subscribe(channel)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				s.Log.Warnf("encoding event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
