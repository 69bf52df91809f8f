package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"voidstate/application/services"
	"voidstate/pkg/common"
	pkgerrors "voidstate/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// InvalidRequestMessage answers bodies that are not a JSON object
const InvalidRequestMessage = "invalid request"

// VoidHandler handles the void's HTTP requests
type VoidHandler struct {
	service      *services.VoidService
	errorHandler *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger

	// limits warnings about throttled clients to a trickle
	throttleLog rate.Sometimes
}

// NewVoidHandler creates a new void handler
func NewVoidHandler(service *services.VoidService, errorHandler *pkgerrors.ErrorHandler, maxBodyBytes int64, logger *zap.Logger) *VoidHandler {
	return &VoidHandler{
		service:      service,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
		throttleLog:  rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// SubmitThoughtRequest represents the request body for releasing a thought
type SubmitThoughtRequest struct {
	Text string `json:"text"`
}

// SubmitThought handles POST /api/thought
func (h *VoidHandler) SubmitThought(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeThought(w, r)
	if err != nil {
		h.errorHandler.HandleStatus(w, r, http.StatusBadRequest, InvalidRequestMessage)
		return
	}

	result, err := h.service.SubmitThought(r.Context(), common.GetClientID(r.Context()), req.Text)
	if err != nil {
		if pkgerrors.IsRateLimit(err) {
			h.throttleLog.Do(func() {
				h.logger.Warn("Clients are being rate limited",
					zap.String("requestID", middleware.GetReqID(r.Context())),
				)
			})
		}
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// decodeThought reads exactly one JSON object from the capped body.
func (h *VoidHandler) decodeThought(w http.ResponseWriter, r *http.Request) (*SubmitThoughtRequest, error) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	dec := json.NewDecoder(r.Body)
	var req SubmitThoughtRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after request body")
	}
	return &req, nil
}

// GetState handles GET /api/state
func (h *VoidHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetState(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, state)
}

// Heartbeat handles POST /api/heartbeat
func (h *VoidHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Heartbeat(r.Context(), common.GetClientID(r.Context())); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.OKResponse{OK: true})
}
