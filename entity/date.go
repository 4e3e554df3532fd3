package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the RFC-2822 style layout used on the wire, always in UTC.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t.UTC()}
}

// ParseDate accepts the RFC-2822 forms the API emits and unix seconds.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewDate(time.Unix(sec, 0)), nil
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// time.Parse reads an unknown abbreviation as +0000.
		if strings.HasSuffix(layout, "MST") && !hasUTCZone(s) {
			continue
		}
		return NewDate(t), nil
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func hasUTCZone(s string) bool {
	return strings.HasSuffix(s, " GMT") || strings.HasSuffix(s, " UTC")
}

func (d Date) String() string {
	return d.UTC().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: expect string, got %s", ErrInvalidDate, string(b))
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed

	return nil
}
