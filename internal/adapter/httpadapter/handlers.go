package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/couchcryptid/city-pulse-service/internal/capability"
	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/render"
)

type descriptionRequest struct {
	Description string `json:"description"`
}

// locationRequest carries exactly one of a device position, an address to
// look up, or the reason the client could not get a position.
type locationRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
	Error   string   `json:"error"`
}

type submitResponse struct {
	Delta render.Delta     `json:"delta"`
	View  render.ViewModel `json:"view"`
}

type errorResponse struct {
	Error string           `json:"error"`
	View  render.ViewModel `json:"view"`
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Events())
}

func (s *Server) handleOpen(w http.ResponseWriter, _ *http.Request) {
	s.ctl.Open()
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	via := controller.CloseButton
	if r.URL.Query().Get("via") == "backdrop" {
		via = controller.Backdrop
	}
	if err := s.ctl.Cancel(via); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.ctl.SetDescription(req.Description); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxImageBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeMessage(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		s.writeBadRequest(w, "expected a multipart form with an image field")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeBadRequest(w, "missing image field")
		return
	}
	defer file.Close()

	src := capability.ImageReader{R: file, DeclaredMIME: header.Header.Get("Content-Type")}
	if err := s.ctl.AttachImage(r.Context(), src); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}

	var src domain.LocationSource
	switch {
	case req.Error != "":
		src = capability.Unavailable{Reason: req.Error}
	case req.Address != "":
		src = capability.AddressLookup{Geocoder: s.opts.Geocoder, Address: req.Address}
	case req.Lat != nil && req.Lng != nil:
		src = capability.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	default:
		s.writeBadRequest(w, "expected lat and lng, address, or error")
		return
	}

	if err := s.ctl.AcquireLocation(r.Context(), src); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// A client that goes away does not cancel the classification; its
	// result is applied or discarded by the controller like any other.
	report, err := s.ctl.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	events := s.ctl.Events()
	writeJSON(w, http.StatusCreated, submitResponse{
		Delta: render.Added(report, len(events), s.opts.Render),
		View:  render.Render(events, s.ctl.Snapshot(), s.opts.Render),
	})
}

func (s *Server) view() render.ViewModel {
	return render.Render(s.ctl.Events(), s.ctl.Snapshot(), s.opts.Render)
}

// writeError maps a controller error to a status and user-facing message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusUnprocessableEntity || status == http.StatusBadGateway {
		if t := s.ctl.Snapshot().Toast; t != nil {
			message = t.Message
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeMessage(w, status, message)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeMessage(w, http.StatusBadRequest, message)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, View: s.view()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controller.ErrValidation), errors.Is(err, controller.ErrCapability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, controller.ErrSubmitting),
		errors.Is(err, controller.ErrNotComposing),
		errors.Is(err, controller.ErrLocationPending),
		errors.Is(err, controller.ErrAbandoned),
		errors.Is(err, controller.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, controller.ErrClassification):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
