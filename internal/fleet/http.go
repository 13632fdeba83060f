package fleet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type HTTP struct{ svc *Service }

func NewHTTP(s *Service) *HTTP { return &HTTP{svc: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	// lorawan devices
	api.HandleFunc("/lorawan/devices", h.createDevice).Methods(http.MethodPost)
	api.HandleFunc("/lorawan/devices/{id}", h.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/lorawan/devices/{id}", h.updateDevice).Methods(http.MethodPut)
	api.HandleFunc("/lorawan/devices/{id}", h.deleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/lorawan/devices/{id}/telemetry", h.getTelemetry).Methods(http.MethodGet)

	// concentrators & edge devices (read side)
	api.HandleFunc("/lorawan/concentrators/{id}", h.getConcentrator).Methods(http.MethodGet)
	api.HandleFunc("/edge/devices/{id}", h.getEdgeDevice).Methods(http.MethodGet)
}

// visibleTags reads the caller's visible tag set from the query string.
func visibleTags(r *http.Request) []string {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDeviceExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *HTTP) getDevice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	d, err := h.svc.GetDevice(mux.Vars(r)["id"], visibleTags(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}

func (h *HTTP) createDevice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in lorawanDeviceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := in.toDetails()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.CreateDevice(d); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

func (h *HTTP) updateDevice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in lorawanDeviceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.DeviceID = mux.Vars(r)["id"]
	d, err := in.toDetails()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.UpdateDevice(d); err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDevice(mux.Vars(r)["id"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) getTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	records, err := h.svc.GetDeviceTelemetry(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(records)
}

func (h *HTTP) getConcentrator(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	d, err := h.svc.GetConcentrator(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}

func (h *HTTP) getEdgeDevice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	d, err := h.svc.GetEdgeDevice(mux.Vars(r)["id"], visibleTags(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}
