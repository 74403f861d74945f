package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// defaultRenames maps normalized (trimmed, lower-cased) source headers to
// canonical column names. Unmapped headers pass through with normalized
// casing only.
var defaultRenames = map[string]string{
	"order date":  ColOrderDate,
	"order_date":  ColOrderDate,
	"order-date":  ColOrderDate,
	"sales":       ColSales,
	"sale amount": ColSales,
	"profit":      ColProfit,
	"discount":    ColDiscount,
	"region":      ColRegion,
	"territory":   ColRegion,
}

// defaultDateFormats are the explicit candidate layouts tried against the
// whole order_date column, in order. A candidate is adopted only when it
// parses every non-empty value.
var defaultDateFormats = []string{
	"02/01/2006", // day/month/year
	"01/02/2006", // month/day/year
	"2006-01-02", // ISO
}

// permissiveDateFormats is the per-value fallback tried when no explicit
// candidate fits the whole column.
var permissiveDateFormats = []string{
	"02/01/2006",
	"01/02/2006",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01-02-2006",
	"2006-01-02 15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006",
	"02.01.2006",
}

// numericColumns are coerced to floats during normalization when present.
var numericColumns = []string{ColSales, ColProfit, ColDiscount}

// encodingCandidate is one entry in the ordered decode-fallback list.
type encodingCandidate struct {
	name string
	enc  encoding.Encoding
}

// encodingCandidates are tried in order; the first that yields well-formed
// CSV wins. Latin-1 and Windows-1252 accept any byte sequence, so they only
// lose to UTF-8 when the data is valid UTF-8.
var encodingCandidates = []encodingCandidate{
	{"utf-8", encoding.Nop},
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// Loader ingests and normalizes sales data files.
type Loader struct {
	logger      *slog.Logger
	renames     map[string]string
	dateFormats []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRenames extends the built-in header rename table. Keys are compared
// after trimming and lower-casing.
func WithRenames(renames map[string]string) LoaderOption {
	return func(l *Loader) {
		for k, v := range renames {
			l.renames[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// WithDateFormats replaces the explicit date-format candidate list.
func WithDateFormats(formats []string) LoaderOption {
	return func(l *Loader) {
		if len(formats) > 0 {
			l.dateFormats = formats
		}
	}
}

// NewLoader creates a dataset loader.
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loader{
		logger:      logger.With(slog.String("component", "dataset_loader")),
		renames:     make(map[string]string, len(defaultRenames)),
		dateFormats: defaultDateFormats,
	}
	for k, v := range defaultRenames {
		l.renames[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load ingests the file at path and returns the normalized dataset.
// Only a missing file or a file no candidate encoding can decode into
// well-formed CSV is an error; malformed values become nulls.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readExcelRecords(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		records, err = l.decodeCSV(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, path)
		}
	}

	ds, err := l.normalize(ctx, records, path)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset ingested",
		slog.String("path", path),
		slog.Int("rows", ds.NumRows()),
		slog.Int("columns", len(ds.Columns())))

	return ds, nil
}

// decodeCSV tries each candidate encoding in order and returns the parsed
// records of the first one that yields well-formed CSV.
func (l *Loader) decodeCSV(ctx context.Context, data []byte) ([][]string, error) {
	for _, candidate := range encodingCandidates {
		decoded := data
		if candidate.enc != encoding.Nop {
			var err error
			decoded, _, err = transform.Bytes(candidate.enc.NewDecoder(), data)
			if err != nil {
				continue
			}
		} else if !utf8.Valid(data) {
			continue
		}

		records, err := parseCSV(decoded)
		if err != nil {
			l.logger.DebugContext(ctx, "encoding candidate rejected",
				slog.String("encoding", candidate.name),
				slog.String("error", err.Error()))
			continue
		}

		l.logger.InfoContext(ctx, "encoding resolved",
			slog.String("encoding", candidate.name))
		return records, nil
	}

	return nil, ErrUnreadableEncoding
}

// parseCSV parses decoded bytes as CSV, requiring a header and at least
// consistent field counts.
func parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(stripBOM(data)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Ragged rows are padded during normalization instead of failing here.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return records, nil
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// normalize turns raw header+data records into the canonical Dataset:
// renamed unique headers, parsed dates, derived month_year labels and
// coerced numeric columns. Row count is preserved; only values go null.
func (l *Loader) normalize(ctx context.Context, records [][]string, path string) (*Dataset, error) {
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	header := records[0]
	rows := records[1:]

	names, err := l.normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	// Column-major copy, padding ragged rows so the row count survives.
	columns := make([][]string, len(names))
	for j := range names {
		col := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				col[i] = strings.TrimSpace(row[j])
			}
		}
		columns[j] = col
	}

	var out []series.Series
	for j, name := range names {
		switch {
		case name == ColOrderDate:
			dates := l.parseDateColumn(ctx, columns[j])
			iso := make([]string, len(dates))
			labels := make([]string, len(dates))
			for i, d := range dates {
				if d != nil {
					iso[i] = d.Format(ISODateLayout)
					labels[i] = d.Format(MonthYearLayout)
				}
			}
			out = append(out,
				series.New(iso, series.String, ColOrderDate),
				series.New(labels, series.String, ColMonthYear))

		case isNumericColumn(name):
			floats := make([]float64, len(columns[j]))
			for i, v := range columns[j] {
				floats[i] = coerceNumeric(v)
			}
			out = append(out, series.New(floats, series.Float, name))

		default:
			out = append(out, series.New(columns[j], series.String, name))
		}
	}

	df := dataframe.New(out...)
	if df.Error() != nil {
		return nil, fmt.Errorf("failed to assemble dataframe: %w", df.Error())
	}

	return &Dataset{
		df:         df,
		sourcePath: path,
		loadedAt:   time.Now(),
	}, nil
}

// normalizeHeader trims, lower-cases and renames source headers, failing
// when two distinct source headers collapse to the same canonical name.
func (l *Loader) normalizeHeader(header []string) ([]string, error) {
	names := make([]string, len(header))
	origin := make(map[string]string, len(header))

	for j, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := l.renames[name]; ok {
			name = canonical
		}
		if prev, dup := origin[name]; dup {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q",
				ErrColumnCollision, prev, raw, name)
		}
		origin[name] = raw
		names[j] = name
	}
	return names, nil
}

// parseDateColumn applies the explicit format candidates in order, adopting
// the first that parses every non-empty value; otherwise it falls back to
// per-value best-effort parsing where failures become nulls.
func (l *Loader) parseDateColumn(ctx context.Context, values []string) []*time.Time {
	for _, layout := range l.dateFormats {
		if dates, ok := parseAllDates(values, layout); ok {
			l.logger.InfoContext(ctx, "date format resolved",
				slog.String("layout", layout))
			return dates
		}
	}

	l.logger.WarnContext(ctx, "no single date format fits, using per-value fallback")

	dates := make([]*time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		for _, layout := range permissiveDateFormats {
			if t, err := time.Parse(layout, v); err == nil {
				dates[i] = &t
				break
			}
		}
	}
	return dates
}

// parseAllDates parses every non-empty value with the one layout; ok is
// false as soon as any value rejects it.
func parseAllDates(values []string, layout string) ([]*time.Time, bool) {
	dates := make([]*time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			return nil, false
		}
		dates[i] = &t
	}
	return dates, true
}

// coerceNumeric parses a source value as a float, tolerating thousands
// separators and currency prefixes. Failures become NaN (null), never errors.
func coerceNumeric(v string) float64 {
	v = strings.TrimSpace(strings.TrimPrefix(v, "$"))
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isNumericColumn(name string) bool {
	for _, n := range numericColumns {
		if n == name {
			return true
		}
	}
	return false
}
