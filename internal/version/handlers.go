package version

import (
	"net/http"

	com "github.com/oceanguard/govclient/internal/common"
)

// Version of the governance client and proxy.
const Version = "0.3.0"

type Service struct{}

func NewService() *Service {
	return &Service{}
}

type response struct {
	Version string `json:"version"`
}

// Current returns the current version of the API
func (s *Service) Current(w http.ResponseWriter, r *http.Request) {
	err := com.Body(w, &response{Version: Version}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
