package treasury

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/treasury/date"
)

// DefaultImportPath selects the price series of a market chart document:
//
//	{"prices": [[1704153600000, 45000.1], ...]}
const DefaultImportPath = "$.prices"

var (
	importDateKeys  = []string{"on", "date", "day", "timestamp", "time"}
	importPriceKeys = []string{"close", "price", "value"}
)

// ImportPrices appends to m the prices of ticker found in the JSON document
// read from r. path is a JSONPath expression selecting the list of points.
//
// A point is either a [timestamp_ms, price] pair or an object with a date
// ("on", "date", "day", "timestamp" or "time") and a price ("close",
// "price" or "value"). Dates are strings or epoch milliseconds. Of
// several points on the same day the last one wins.
//
// It returns the number of points read.
func ImportPrices(m *MarketData, ticker string, r io.Reader, path string) (int, error) {
	if path == "" {
		path = DefaultImportPath
	}
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("cannot decode json document: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	points, ok := selected.([]any)
	if !ok {
		return 0, fmt.Errorf("%q selects a %T, want a list of points", path, selected)
	}

	type point struct {
		on    date.Date
		price float64
	}
	parsed := make([]point, 0, len(points))
	for i, p := range points {
		on, price, err := importPoint(p)
		if err != nil {
			return 0, fmt.Errorf("point %d: %w", i, err)
		}
		if !(price > 0) {
			return 0, fmt.Errorf("point %d: price must be positive, got %v", i, price)
		}
		parsed = append(parsed, point{on, price})
	}
	// all or nothing
	for _, p := range parsed {
		m.Append(ticker, p.on, p.price)
	}
	return len(parsed), nil
}

func importPoint(p any) (date.Date, float64, error) {
	switch v := p.(type) {
	case []any:
		if len(v) < 2 {
			return date.Date{}, 0, fmt.Errorf("want a [timestamp, price] pair, got %d values", len(v))
		}
		on, err := importDate(v[0])
		if err != nil {
			return date.Date{}, 0, err
		}
		price, ok := v[1].(float64)
		if !ok {
			return date.Date{}, 0, fmt.Errorf("price must be a number, got %T", v[1])
		}
		return on, price, nil

	case map[string]any:
		jon, ok := lookup(v, importDateKeys)
		if !ok {
			return date.Date{}, 0, fmt.Errorf("missing a date property, one of %s", strings.Join(importDateKeys, ", "))
		}
		on, err := importDate(jon)
		if err != nil {
			return date.Date{}, 0, err
		}
		jprice, ok := lookup(v, importPriceKeys)
		if !ok {
			return date.Date{}, 0, fmt.Errorf("missing a price property, one of %s", strings.Join(importPriceKeys, ", "))
		}
		price, ok := jprice.(float64)
		if !ok {
			return date.Date{}, 0, fmt.Errorf("price must be a number, got %T", jprice)
		}
		return on, price, nil
	}
	return date.Date{}, 0, fmt.Errorf("want a pair or an object, got %T", p)
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func importDate(v any) (date.Date, error) {
	switch x := v.(type) {
	case float64:
		return date.FromTime(time.UnixMilli(int64(x)).UTC()), nil
	case string:
		// accept full timestamps, keep the day
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return date.FromTime(t.UTC()), nil
		}
		return date.Parse(x)
	}
	return date.Date{}, fmt.Errorf("date must be a string or epoch milliseconds, got %T", v)
}
