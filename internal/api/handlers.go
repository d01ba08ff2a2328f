package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calderlabs/spectra-core/internal/device"
)

// healthResponse is the /health payload.
type healthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// deviceSummary is one entry of the device list.
type deviceSummary struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Status string `json:"status"`
}

// attributeSnapshot is the cached view of one attribute.
type attributeSnapshot struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	Value     any        `json:"value,omitempty"`
	Format    string     `json:"format,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Quality   string     `json:"quality"`
}

// deviceDetail is the full device snapshot.
type deviceDetail struct {
	Name       string              `json:"name"`
	State      string              `json:"state"`
	Status     string              `json:"status"`
	Attributes []attributeSnapshot `json:"attributes"`
}

// handleHealth reports service and component health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.version}

	if len(s.checks) > 0 {
		resp.Components = make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check.HealthCheck(r.Context()); err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
			} else {
				resp.Components[name] = "ok"
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleListDevices returns a summary of every registered device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.List()
	out := make([]deviceSummary, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceSummary{
			Name:   d.Name(),
			State:  d.State().String(),
			Status: d.Status(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// attributeSegment splits a device path from a trailing attribute
// request. Device names contain slashes, so the split takes the last
// occurrence.
const attributeSegment = "/attributes/"

// handleGetDevice returns the full snapshot of one device, or of one
// attribute when the path ends in /attributes/{attr}. The device name is
// the remainder of the URL path.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	if i := strings.LastIndex(name, attributeSegment); i >= 0 {
		s.handleGetAttribute(w, name[:i], name[i+len(attributeSegment):])
		return
	}

	d, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "device not found: "+name)
		return
	}

	detail := deviceDetail{
		Name:       d.Name(),
		State:      d.State().String(),
		Status:     d.Status(),
		Attributes: snapshotAttributes(d),
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleGetAttribute returns the cached snapshot of a single attribute.
func (s *Server) handleGetAttribute(w http.ResponseWriter, name, attrName string) {
	d, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "device not found: "+name)
		return
	}

	attr, ok := d.Attributes().Lookup(attrName)
	if !ok {
		writeError(w, http.StatusNotFound, "attribute not found: "+attrName)
		return
	}

	writeJSON(w, http.StatusOK, snapshotAttribute(attr))
}

// snapshotAttributes reads the cached value of every declared attribute.
func snapshotAttributes(d *device.Device) []attributeSnapshot {
	names := d.Attributes().Names()
	sort.Strings(names)
	out := make([]attributeSnapshot, 0, len(names))

	for _, name := range names {
		attr, ok := d.Attributes().Lookup(name)
		if !ok {
			continue
		}
		out = append(out, snapshotAttribute(attr))
	}
	return out
}

// snapshotAttribute reads the cached value of one attribute.
func snapshotAttribute(attr *device.Attribute) attributeSnapshot {
	snap := attributeSnapshot{
		Name: attr.Name(),
		Kind: attr.Kind().String(),
	}

	if attr.Kind() == device.KindEncoded {
		enc, ts, quality := attr.EncodedValue()
		snap.Format = enc.Format
		snap.Quality = quality.String()
		if !ts.IsZero() {
			snap.Timestamp = &ts
		}
	} else {
		value, ts, quality := attr.Value()
		snap.Value = value
		snap.Quality = quality.String()
		if !ts.IsZero() {
			snap.Timestamp = &ts
		}
	}
	return snap
}

// errorResponse is the JSON error payload.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response already committed
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
