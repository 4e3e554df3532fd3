package httputil

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"mgstats/entity"
)

const (
	ContentTypeJson = "application/json"
	MaxRequestSize  = 1 << 20  // 1MB
	MaxResponseSize = 10 << 20 // 10MB
)

var (
	// to encode url params
	encoder = schema.NewEncoder()
	// to decode url params
	decoder = schema.NewDecoder()
)

func init() {
	encoder.RegisterEncoder(time.Time{}, func(v reflect.Value) string {
		return entity.NewDate(v.Interface().(time.Time)).String()
	})
	decoder.IgnoreUnknownKeys(true)
}

// EncodeQuery turns the schema-tagged fields of src into query values.
func EncodeQuery(src interface{}) (url.Values, error) {
	values := make(url.Values)
	if src == nil || (reflect.ValueOf(src).Kind() == reflect.Ptr && reflect.ValueOf(src).IsNil()) {
		return values, nil
	}

	if err := encoder.Encode(src, values); err != nil {
		return nil, err
	}

	return values, nil
}

func DecodeQuery(dst interface{}, values url.Values) error {
	return decoder.Decode(dst, values)
}

func ReadJsonBody(r *http.Request, dst interface{}) error {
	if r.Body == http.NoBody {
		return nil
	}

	d := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxRequestSize))

	return d.Decode(dst)
}

func HasContentType(h http.Header, mimetype string) bool {
	contentType := h.Get("Content-type")
	if contentType == "" {
		return mimetype == "application/octet-stream"
	}

	for _, v := range strings.Split(contentType, ",") {
		t, _, err := mime.ParseMediaType(v)
		if err != nil {
			break
		}
		if t == mimetype {
			return true
		}
	}
	return false
}
