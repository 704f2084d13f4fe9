package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/skni-kod/kolo-rest-api/errs"
)

const maxResponseSize = 10 * 1024 * 1024

var notificationClient = &http.Client{Timeout: 5 * time.Second}

type Responder struct {
	logger     zerolog.Logger
	webhookURL string
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger: logger}
}

// WithWebhook makes the responder report internal errors to url.
func (r Responder) WithWebhook(url string) Responder {
	r.webhookURL = url
	return r
}

// WriteJSON answers 200 with data.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteCreated(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusCreated, data)
}

func (r Responder) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		r.WriteError(w, errs.NewApiErr(http.StatusRequestEntityTooLarge, "response too large, use limit and offset"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// SendErrorNotification posts unexpected errors to the configured webhook.
func (r Responder) SendErrorNotification(errMsg string) {
	if r.webhookURL == "" {
		return
	}
	jsonData, err := json.Marshal(map[string]string{"errorMessage": errMsg})
	if err != nil {
		r.logger.Error().Err(err).Msg("Error marshaling error notification request")
		return
	}

	resp, err := notificationClient.Post(r.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		r.logger.Error().Err(err).Msg("Error sending error notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		r.logger.Error().Msgf("Error notification webhook returned status: %d", resp.StatusCode)
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	if !errors.As(err, &apiErr) || apiErr.Internal() {
		status := http.StatusInternalServerError
		if apiErr != nil {
			status = apiErr.StatusCode
		}
		r.logger.Error().Err(err).Str("fullError", fullError(err)).Msg("internal error")
		go r.SendErrorNotification(fullError(err))
		r.WriteJSONStatus(w, status, ErrorResponse{
			Error:  http.StatusText(status),
			Status: "error",
		})
		return
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Fields:  apiErr.Fields,
		Details: apiErr.Details,
	})
}

func fullError(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.GetFullError()
	}
	return err.Error()
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
