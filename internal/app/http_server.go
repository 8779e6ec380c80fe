package app

import (
	"encoding/json"
	"net/http"

	"github.com/touchplate/touchplate/internal/tsmap"
)

// RegisterRoutes wires the API and websocket handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/calibration", a.handleCalibration)
	mux.Handle("/ws/events", a.Stream())
	mux.HandleFunc("/favicon.ico", handleFavicon)
}

type stateResponse struct {
	DisplayWidth  int          `json:"displayWidth"`
	DisplayHeight int          `json:"displayHeight"`
	Rotation      int          `json:"rotation"`
	Calibration   tsmap.Params `json:"calibration"`
}

type calibrationRequest struct {
	ULX int16 `json:"ulx"`
	ULY int16 `json:"uly"`
	LRX int16 `json:"lrx"`
	LRY int16 `json:"lry"`
}

// handleState returns display geometry and active calibration.
func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.mu.Lock()
	pixelsX, pixelsY := a.mapper.Size()
	params := a.mapper.Params()
	a.mu.Unlock()

	resp := stateResponse{
		DisplayWidth:  pixelsX,
		DisplayHeight: pixelsY,
		Rotation:      a.cfg.Rotation,
		Calibration:   params,
	}
	writeJSON(w, resp)
}

// handleCalibration reads or replaces the active calibration. PUT
// applies the parameters immediately and persists them.
func (a *App) handleCalibration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.mu.Lock()
		params := a.mapper.Params()
		a.mu.Unlock()
		writeJSON(w, params)
	case http.MethodPut:
		var req calibrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		p := tsmap.Params{ULX: req.ULX, ULY: req.ULY, LRX: req.LRX, LRY: req.LRY}
		if p.ULX == p.LRX || p.ULY == p.LRY {
			http.Error(w, "degenerate calibration", http.StatusBadRequest)
			return
		}
		if err := a.applyCalibration(p); err != nil {
			http.Error(w, "failed to persist calibration", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeJSON encodes v onto w with the JSON content type.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
