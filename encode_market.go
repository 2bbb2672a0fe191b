package treasury

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/treasury/date"
	"go.uber.org/zap"
)

const attrOn = "on"
const marketDataFilesGlob = "[0-9][0-9][0-9][0-9].jsonl"

// Market data lives in a folder of yearly JSONL files, one line per day:
//
//	{"on":"2024-01-02","BTC":45000,"MSTR":650.5}
//
// It stays human-readable and diffs nicely under version control.
//
// Decode reads every yearly file and appends each line to the database.
// Encode regenerates the yearly files from the database and removes the
// ones that are no longer needed.

// fileLine structures a line from a collection of files as the persistence layer represent them.
type fileLine struct {
	filename string
	i        int
	txt      string
}

// loadLines read all lines from a set of files and return them in list of structured lines.
func loadLines(filenames ...string) (list []fileLine, err error) {
	for _, filename := range filenames {
		r, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot open %q for reading: %w", filename, err)
		}
		lines, err := scanLines(filename, r)
		r.Close()
		if err != nil {
			return nil, err
		}
		list = append(list, lines...)
	}
	return list, nil
}

func scanLines(filename string, r io.Reader) ([]fileLine, error) {
	var list []fileLine
	i := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		i++
		list = append(list, fileLine{filename, i, scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return list, nil
}

// decodeDailyPrices decodes a single line from the database persisted files.
func decodeDailyPrices(m *MarketData, l fileLine) error {
	if strings.TrimSpace(l.txt) == "" {
		return nil
	}

	jobj := make(map[string]any)
	if err := json.Unmarshal([]byte(l.txt), &jobj); err != nil {
		return fmt.Errorf("parse error %s:%v: not a correct json: %w", l.filename, l.i, err)
	}

	jvalue, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("parse error %s:%v: missing the property %q with a date", l.filename, l.i, attrOn)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return fmt.Errorf("parse error %s:%v: property %q must be of type 'string'", l.filename, l.i, attrOn)
	}
	on, err := date.Parse(jstring)
	if err != nil {
		return fmt.Errorf("parse error %s:%v: property %q must be a valid date: %w", l.filename, l.i, attrOn, err)
	}

	// Every other attribute is a (ticker, price) pair.
	for ticker, price := range jobj {
		if ticker == attrOn {
			continue
		}
		p, ok := price.(float64)
		if !ok {
			return fmt.Errorf("parse error %s:%v: property %q must be of type 'number'", l.filename, l.i, ticker)
		}
		if !(p > 0) {
			return fmt.Errorf("parse error %s:%v: price of %q must be positive, got %v", l.filename, l.i, ticker, p)
		}
		m.Append(ticker, on, p)
	}
	return nil
}

// DecodeMarketData reads the yearly price files of folder. A missing folder
// is an empty database.
func DecodeMarketData(folder string) (*MarketData, error) {
	m := NewMarketData()

	filenames, err := filepath.Glob(filepath.Join(folder, marketDataFilesGlob))
	if err != nil {
		return nil, fmt.Errorf("load error: cannot scan folder %q for market data files: %w", folder, err)
	}

	lines, err := loadLines(filenames...)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := decodeDailyPrices(m, line); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// encodeDailyPrices persists a single line in a yearly jsonl file.
// Returns bare io errors.
func encodeDailyPrices(w io.Writer, day date.Date, tickers []string, values []float64) error {
	// encoding/json sorts map keys, which keeps "on" in a stable place for diffs.
	jobj := make(map[string]any, len(tickers)+1)
	jobj[attrOn] = day.String()
	for i, ticker := range tickers {
		if math.IsNaN(values[i]) {
			continue
		}
		jobj[ticker] = values[i]
	}
	b, err := json.Marshal(jobj)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// EncodeMarketData writes m into folder as one JSONL file per year, and
// deletes yearly files that no longer hold any price.
func EncodeMarketData(folder string, m *MarketData) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("persist error: cannot create folder %q: %w", folder, err)
	}

	tickers := m.Tickers()
	histories := make([]*date.History[float64], len(tickers))
	for i, t := range tickers {
		histories[i] = m.Prices(t)
	}

	created := make(map[string]struct{})
	var current *os.File
	closeCurrent := func() error {
		if current == nil {
			return nil
		}
		err := current.Close()
		current = nil
		return err
	}
	defer closeCurrent()

	for day := range date.Iterate(histories...) {
		filename := filepath.Join(folder, fmt.Sprintf("%d.jsonl", day.Year()))
		if _, ok := created[filename]; !ok {
			if err := closeCurrent(); err != nil {
				return fmt.Errorf("persist error: %w", err)
			}
			f, err := os.Create(filename)
			if err != nil {
				return fmt.Errorf("persist error: cannot create file %q: %w", filename, err)
			}
			current = f
			created[filename] = struct{}{}
			zap.L().Debug("create market data file", zap.String("name", filename))
		}

		var names []string
		var values []float64
		for i, h := range histories {
			if v, ok := h.Get(day); ok {
				names = append(names, tickers[i])
				values = append(values, v)
			}
		}
		if err := encodeDailyPrices(current, day, names, values); err != nil {
			return fmt.Errorf("persist error: write error on file %q: %w", filename, err)
		}
	}
	if err := closeCurrent(); err != nil {
		return fmt.Errorf("persist error: %w", err)
	}

	filenames, err := filepath.Glob(filepath.Join(folder, marketDataFilesGlob))
	if err != nil {
		return fmt.Errorf("persist error: cannot scan folder %q for market data files to be deleted: %w", folder, err)
	}
	for _, filename := range filenames {
		if _, ok := created[filename]; ok {
			continue
		}
		if err := os.Remove(filename); err != nil {
			return fmt.Errorf("persist error: cannot delete file %q: %w", filename, err)
		}
		zap.L().Debug("delete market data file", zap.String("name", filename))
	}
	return nil
}
