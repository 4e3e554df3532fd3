package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"mgstats/pkg/errutil"
)

const maxErrorBodySize = 4 << 10

// ErrorResponse is the body the API sends with non-2xx responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ReadErrorMessage extracts the message of an API error response, falling
// back to the raw body.
func ReadErrorMessage(res *http.Response) string {
	if res == nil || res.Body == nil {
		return ""
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}

	errResp := new(ErrorResponse)
	if err := json.Unmarshal(b, errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	return strings.TrimSpace(string(b))
}

func ReturnServerResponse(w http.ResponseWriter, r *http.Request, res interface{}, resErr error) {
	code, errMsg := errutil.ParseHttpError(resErr)

	var body interface{} = res
	if resErr != nil {
		body = &ErrorResponse{Message: errMsg}
	}

	js, err := json.Marshal(body)
	if err != nil {
		log.Ctx(r.Context()).Error().Msgf("marshal server response failed, err: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentTypeJson)
	w.WriteHeader(code)

	if _, err := w.Write(js); err != nil {
		log.Ctx(r.Context()).Error().Msgf("fail to return server response, err: %v", err)
	}
}
