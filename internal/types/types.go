// Package types provides common type definitions for the valuation service.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// InstrumentType enumerates the instrument variants
type InstrumentType string

const (
	InstrumentEquity  InstrumentType = "EQUITY"
	InstrumentBond    InstrumentType = "BOND"
	InstrumentFutures InstrumentType = "FUTURES"
	InstrumentOptions InstrumentType = "OPTIONS"
	InstrumentFX      InstrumentType = "FX"
	InstrumentOther   InstrumentType = "OTHER"
)

// ParseInstrumentType maps a stored type code to an InstrumentType.
// Unrecognised codes map to InstrumentOther.
func ParseInstrumentType(s string) InstrumentType {
	switch t := InstrumentType(strings.ToUpper(strings.TrimSpace(s))); t {
	case InstrumentEquity, InstrumentBond, InstrumentFutures, InstrumentOptions, InstrumentFX:
		return t
	case "OPTION":
		return InstrumentOptions
	case "FUTURE":
		return InstrumentFutures
	default:
		return InstrumentOther
	}
}

// Side is the direction of a net holding
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
	SideFlat  Side = "FLAT"
)

// LotMethod selects a lot accounting view
type LotMethod string

const (
	LotNone LotMethod = "NONE"
	LotFIFO LotMethod = "FIFO"
	LotLIFO LotMethod = "LIFO"
	LotAVG  LotMethod = "AVG"
)

// ParseLotMethod normalises a lot view parameter. Blank means LotNone.
func ParseLotMethod(s string) (LotMethod, error) {
	switch m := LotMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return LotNone, nil
	case LotNone, LotFIFO, LotLIFO, LotAVG:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported lot view %q", s)
	}
}

// Day truncates t to midnight UTC of its UTC calendar date. All dates in
// the service are compared and used as map keys in this form.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 UTC on the day of t
func EndOfDay(t time.Time) time.Time {
	return Day(t).Add(24*time.Hour - time.Second)
}

// ParseDate parses a YYYY-MM-DD date as a UTC day
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected date as YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// FormatDate renders a day as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateRange is an inclusive range of UTC days
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds a range over the days of from and to
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

// Valid reports whether From is on or before To
func (r DateRange) Valid() bool {
	return !r.From.After(r.To)
}

// Contains reports whether the day of t lies in the range
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// DayCount is the number of days in the range, 0 when inverted. Spans
// beyond the range of time.Duration saturate.
func (r DateRange) DayCount() int {
	if !r.Valid() {
		return 0
	}
	return int(r.To.Sub(r.From)/(24*time.Hour)) + 1
}

// Days lists every day in the range in ascending order
func (r DateRange) Days() []time.Time {
	if !r.Valid() {
		return nil
	}
	var days []time.Time
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Page is a normalised page request
type Page struct {
	Number int
	Size   int
}

// NormalizePage clamps a page request: page < 1 becomes 1, size <= 0 becomes
// defaultSize and size above maxSize becomes maxSize.
func NormalizePage(page, size, defaultSize, maxSize int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: page, Size: size}
}

// Offset is the index of the first element of the page, capped at total.
// Page numbers past the end never overflow.
func (p Page) Offset(total int) int {
	if p.Number < 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > total/p.Size {
		return total
	}
	if off := (p.Number - 1) * p.Size; off < total {
		return off
	}
	return total
}

// PagedResult wraps one page of items
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items to p
func Paginate[T any](items []T, p Page) PagedResult[T] {
	total := len(items)
	start := p.Offset(total)
	end := start
	if p.Size > 0 {
		end = total
		if p.Size < total-start {
			end = start + p.Size
		}
	}
	pages := 0
	if p.Size > 0 {
		pages = total / p.Size
		if total%p.Size != 0 {
			pages++
		}
	}
	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return PagedResult[T]{
		Items:      page,
		Page:       p.Number,
		Size:       p.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
