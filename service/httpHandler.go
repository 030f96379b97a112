package service

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	logger "github.com/Financial-Times/go-logger/v2"
	"github.com/google/uuid"

	"github.com/JinnyViboonlarp/app-nel/mmif"
)

// Handler exposes the mapper over HTTP: POST an MMIF document to the root
// path and get the annotated document back; GET returns the app metadata.
type Handler struct {
	service *EntityLinkingService
	log     *logger.UPPLogger
}

func NewHandler(service *EntityLinkingService, log *logger.UPPLogger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.metadata(w, r)
	case http.MethodPost:
		h.annotate(w, r)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "only GET and POST are supported")
	}
}

func (h *Handler) metadata(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewAppMetadata()); err != nil {
		h.log.WithError(err).Error("Failed to write app metadata")
	}
}

func (h *Handler) annotate(w http.ResponseWriter, r *http.Request) {
	tid := r.Header.Get("X-Request-Id")
	if tid == "" {
		tid = "tid_" + uuid.New().String()
	}
	requestLog := h.log.WithTransactionID(tid)

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		requestLog.WithError(err).Error("Failed to read request body")
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	m, err := mmif.Parse(body)
	if err != nil {
		requestLog.WithError(err).Error("Request body is not an MMIF document")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Annotate(r.Context(), m); err != nil {
		requestLog.WithError(err).Error("Failed to link named entities")
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	out, err := m.Marshal(true)
	if err != nil {
		requestLog.WithError(err).Error("Failed to marshal annotated document")
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	requestLog.WithField("views", len(m.Views)).Info("Linked named entities")
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
