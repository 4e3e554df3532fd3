// Package hydrator turns API responses into response models.
package hydrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mgstats/pkg/errutil"
	"mgstats/pkg/httputil"
)

var (
	ErrEmptyBody             = errors.New("empty response body")
	ErrUnexpectedContentType = errors.New("unexpected content type")
)

// Hydrator decodes res into dst. dst is left untouched unless decoding
// succeeds completely.
type Hydrator interface {
	Hydrate(res *http.Response, dst json.Unmarshaler) error
}

type modelHydrator struct {
	maxBodySize int64
}

func NewModelHydrator() Hydrator {
	return &modelHydrator{
		maxBodySize: httputil.MaxResponseSize,
	}
}

func (h *modelHydrator) Hydrate(res *http.Response, dst json.Unmarshaler) error {
	if res == nil || res.Body == nil || res.Body == http.NoBody {
		return errutil.HydrationError(ErrEmptyBody)
	}

	if !httputil.HasContentType(res.Header, httputil.ContentTypeJson) {
		return errutil.HydrationError(fmt.Errorf("%w: %q", ErrUnexpectedContentType, res.Header.Get("Content-Type")))
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, h.maxBodySize))
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return errutil.HydrationError(ErrEmptyBody)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return errutil.HydrationError(err)
	}

	return nil
}
