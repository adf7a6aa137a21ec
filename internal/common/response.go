package common

import (
	"encoding/json"
	"net/http"
)

type ResponseType string

const (
	ResponseTypeObject ResponseType = "object"
	ResponseTypeArray  ResponseType = "array"
)

// Response is the default envelope used for list endpoints.
type Response struct {
	ResponseType ResponseType `json:"response_type"`
	Object       any          `json:"object,omitempty"`
	Array        any          `json:"array,omitempty"`
	Meta         any          `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes body as-is, without the envelope.
func JSON(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)

	return nil
}

func Body(w http.ResponseWriter, body any, meta any) error {
	return JSON(w, http.StatusOK, &Response{
		ResponseType: ResponseTypeObject,
		Object:       body,
		Meta:         meta,
	})
}

func BodyMultiple(w http.ResponseWriter, body any, meta any) error {
	return JSON(w, http.StatusOK, &Response{
		ResponseType: ResponseTypeArray,
		Array:        body,
		Meta:         meta,
	})
}

func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, &ErrorResponse{Error: message})
}
