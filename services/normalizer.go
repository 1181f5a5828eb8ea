package services

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"data-hand/models"
)

// headerRewrites bildet bekannte Header-Varianten auf das kanonische
// Vokabular ab. Die Reihenfolge ist Teil des Kontrakts: die erste passende
// Regel gewinnt.
var headerRewrites = []struct {
	substr    string
	canonical string
}{
	{"worldwide gross", "worldwide_gross"},
	{"box office", "worldwide_gross"},
	{"total gross", "worldwide_gross"},
	{"film title", "title"},
	{"movie", "title"},
	{"release year", "year"},
	{"year released", "year"},
}

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// minFilmCells ist die Mindestanzahl an Zellen für eine gültige Filmzeile
// (Rank, Titel, Gross).
const minFilmCells = 3

// NormalizeHeader normalisiert einen rohen Header-Text: lowercase, trim,
// dann entweder eine Rewrite-Regel oder generisches Aufräumen
// (Sonderzeichen raus, Whitespace zu Underscores).
func NormalizeHeader(header string) string {
	header = strings.TrimSpace(strings.ToLower(header))

	for _, rule := range headerRewrites {
		if strings.Contains(header, rule.substr) {
			return rule.canonical
		}
	}

	header = nonWordPattern.ReplaceAllString(header, "")
	header = whitespacePattern.ReplaceAllString(header, "_")
	return header
}

// TableNormalizer wandelt rohe Tabellen in Records mit kanonischen
// Feldnamen um.
type TableNormalizer struct {
	Logger *zap.Logger
}

// NewTableNormalizer erstellt einen neuen Table-Normalizer.
func NewTableNormalizer(logger *zap.Logger) *TableNormalizer {
	return &TableNormalizer{Logger: logger}
}

// Normalize baut aus einer rohen Tabelle die Record-Sequenz. Zeilen mit
// weniger als drei Zellen werden übersprungen; fehlgeschlagene numerische
// Parses ergeben Absent-Werte. Emittiert wird ein Record nur mit nicht-leerem
// Titel, das ist der einzige Akzeptanz-Filter.
func (n *TableNormalizer) Normalize(raw models.RawTable) []models.Record {
	headers := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		headers[i] = NormalizeHeader(h)
	}

	var records []models.Record
	for _, row := range raw.Rows {
		if len(row) < minFilmCells {
			continue
		}

		rec := models.NewRecord()
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			header := headers[i]

			switch {
			case header == "rank":
				rec.Set("rank", parseLeadingInt(cell))
			case header == "title" || header == "film":
				rec.Set("title", models.StringValue(CleanTitle(cell)))
			case strings.Contains(header, "gross") || strings.Contains(header, "revenue"):
				// Numerisches Parsen passiert erst im Extractor; hier bleibt
				// der Rohtext erhalten.
				rec.Set("worldwide_gross", models.StringValue(cell))
			case header == "year":
				rec.Set("year", parseYear(cell))
			case header == "peak":
				rec.Set("peak", parseLeadingInt(cell))
			default:
				rec.Set(header, models.StringValue(cell))
			}
		}

		if title, ok := rec.Get("title"); ok && title.Str != "" {
			records = append(records, rec)
		}
	}

	if n.Logger != nil {
		n.Logger.Debug("Table normalized",
			zap.Int("rows_in", len(raw.Rows)),
			zap.Int("records_out", len(records)))
	}
	return records
}

// parseLeadingInt liest die erste Ziffernfolge einer Zelle als Ganzzahl.
func parseLeadingInt(text string) models.Value {
	match := leadingIntPattern.FindString(text)
	if match == "" {
		return models.AbsentValue()
	}
	num, err := strconv.Atoi(match)
	if err != nil {
		return models.AbsentValue()
	}
	return models.IntValue(num)
}

// parseYear liest die erste vierstellige Jahreszahl einer Zelle.
func parseYear(text string) models.Value {
	match := yearPattern.FindString(text)
	if match == "" {
		return models.AbsentValue()
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return models.AbsentValue()
	}
	return models.IntValue(year)
}
