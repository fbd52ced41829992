package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
)

const successMessage = "success"

type dataResponse struct {
	Data any `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// handlerFunc is an http.HandlerFunc that leaves error responses to the service.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

func writeData(w http.ResponseWriter, data any) error {
	return writeJSON(w, http.StatusOK, dataResponse{Data: data})
}

func writeMessage(w http.ResponseWriter, status int, data any) error {
	return writeJSON(w, status, messageResponse{Message: successMessage, Data: data})
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}
	return nil
}

func pathID(r *http.Request) (model.ID, error) {
	var id model.ID
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return "", apperr.ValidationErr.WrapParent(&runtime.InvalidParamFormatError{ParamName: "id", Err: err})
	}
	return id, nil
}
