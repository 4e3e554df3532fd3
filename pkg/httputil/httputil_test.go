package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"mgstats/entity"
	"mgstats/pkg/errutil"
)

type query struct {
	Events     []entity.Event    `schema:"event,omitempty"`
	Start      time.Time         `schema:"start,omitempty"`
	End        time.Time         `schema:"end,omitempty"`
	Resolution entity.Resolution `schema:"resolution,omitempty"`
}

var errDomainNotFound = errors.New("domain not found")

func TestEncodeQuery(t *testing.T) {
	q := &query{
		Events:     []entity.Event{entity.EventAccepted, entity.EventFailed},
		Start:      time.Unix(0, 0),
		Resolution: entity.ResolutionHour,
	}

	values, err := EncodeQuery(q)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if got := values["event"]; !reflect.DeepEqual(got, []string{"accepted", "failed"}) {
		t.Errorf("unexpected events: %v", got)
	}
	if got := values.Get("start"); got != "Thu, 01 Jan 1970 00:00:00 GMT" {
		t.Errorf("unexpected start: %q", got)
	}
	if values.Has("end") {
		t.Errorf("expected zero end to be omitted, got %q", values.Get("end"))
	}
	if got := values.Get("resolution"); got != "hour" {
		t.Errorf("unexpected resolution: %q", got)
	}

	empty, err := EncodeQuery((*query)(nil))
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty values for nil query, got %v, err: %v", empty, err)
	}
}

func TestHasContentType(t *testing.T) {
	h := make(http.Header)
	h.Set("Content-Type", "application/json; charset=utf-8")
	if !HasContentType(h, ContentTypeJson) {
		t.Errorf("expected json content type")
	}
	if HasContentType(h, "text/html") {
		t.Errorf("expected html not to match")
	}
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json", body: `{"message": "Invalid private key"}`, want: "Invalid private key"},
		{name: "plain", body: "Forbidden\n", want: "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &http.Response{Body: io.NopCloser(strings.NewReader(tt.body))}
			if got := ReadErrorMessage(res); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReturnServerResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	ReturnServerResponse(w, r, map[string]int{"total": 7}, nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"total":7}` {
		t.Errorf("unexpected success response: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	ReturnServerResponse(w, r, nil, errutil.NotFoundError(errDomainNotFound))
	if w.Code != http.StatusNotFound || strings.TrimSpace(w.Body.String()) != `{"message":"domain not found"}` {
		t.Errorf("unexpected error response: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentTypeJson {
		t.Errorf("unexpected content type: %q", ct)
	}
}
