package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/types"
)

// dateParam parses the YYYY-MM-DD query parameter name. An absent value is
// the zero time, which the services reject as missing.
func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		return time.Time{}, errors.NewInvalidParameterError(name, "must be a date in YYYY-MM-DD form")
	}
	return d, nil
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.NewInvalidParameterError(name, "must be an integer")
	}
	return &n, nil
}

// listParam collects a comma-separated or repeated query parameter
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
