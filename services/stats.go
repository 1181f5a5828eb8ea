package services

import (
	"math"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"data-hand/models"
)

// ChartPoint ist ein numerisches Wertepaar für die Chart-Erzeugung.
type ChartPoint struct {
	X float64
	Y float64
}

// StatsEngine berechnet Kennzahlen über Record-Sequenzen. Alle Operationen
// sind pur: sie verändern die Eingabe nicht und liefern bei identischer
// Eingabe identische Ergebnisse.
type StatsEngine struct {
	Logger *zap.Logger
}

// NewStatsEngine erstellt eine neue Statistik-Engine.
func NewStatsEngine(logger *zap.Logger) *StatsEngine {
	return &StatsEngine{Logger: logger}
}

// CountBeforeYearWithMinRevenue zählt Records mit Jahr < year und Umsatz
// >= minGross Milliarden. Records, bei denen eines der Felder fehlt,
// disqualifizieren sich.
func (e *StatsEngine) CountBeforeYearWithMinRevenue(records []models.Record, year int, minGross float64) int {
	count := 0
	for _, rec := range records {
		filmYear, okYear := ExtractYear(rec)
		revenue, okRevenue := ExtractRevenueBillions(rec)
		if okYear && okRevenue && filmYear < year && revenue >= minGross {
			count++
		}
	}
	return count
}

// EarliestTitleOverRevenue liefert den Titel des frühesten Films mit Umsatz
// >= minGross. Bei Jahres-Gleichstand gewinnt der zuerst gesehene Record.
// Leere Eingabe ergibt "No data available", kein qualifizierender Record
// "Unknown".
func (e *StatsEngine) EarliestTitleOverRevenue(records []models.Record, minGross float64) string {
	if len(records) == 0 {
		return "No data available"
	}

	earliestYear := 0
	earliestTitle := "Unknown"
	found := false

	for _, rec := range records {
		filmYear, okYear := ExtractYear(rec)
		revenue, okRevenue := ExtractRevenueBillions(rec)
		if !okYear || !okRevenue || revenue < minGross {
			continue
		}
		if !found || filmYear < earliestYear {
			found = true
			earliestYear = filmYear
			earliestTitle = ExtractTitle(rec)
		}
	}

	return earliestTitle
}

// Correlation berechnet den Pearson-Koeffizienten zwischen zwei Spalten,
// gerundet auf 6 Nachkommastellen. Nicht auflösbare Spalten, weniger als
// zwei gültige Paare oder ein undefiniertes Ergebnis (z.B. Null-Varianz)
// ergeben 0.0.
func (e *StatsEngine) Correlation(records []models.Record, fieldA, fieldB string) float64 {
	xs, ys := e.numericPairs(records, fieldA, fieldB)
	if len(xs) < 2 {
		return 0.0
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0.0
	}
	return math.Round(r*1e6) / 1e6
}

// PrepareChartPairs liefert pro Record ein (x, y)-Paar, sofern beide Werte
// numerisch deutbar sind. Die Record-Reihenfolge bleibt erhalten,
// nicht-numerische Zeilen fallen stillschweigend weg.
func (e *StatsEngine) PrepareChartPairs(records []models.Record, fieldA, fieldB string) []ChartPoint {
	xs, ys := e.numericPairs(records, fieldA, fieldB)
	points := make([]ChartPoint, 0, len(xs))
	for i := range xs {
		points = append(points, ChartPoint{X: xs[i], Y: ys[i]})
	}
	return points
}

// numericPairs löst beide Spaltennamen auf und sammelt die paarweise
// numerischen Werte in Record-Reihenfolge.
func (e *StatsEngine) numericPairs(records []models.Record, fieldA, fieldB string) ([]float64, []float64) {
	columns := columnOrder(records)

	colA, okA := resolveColumn(columns, fieldA)
	colB, okB := resolveColumn(columns, fieldB)
	if !okA || !okB {
		if e.Logger != nil {
			e.Logger.Debug("Column resolution failed",
				zap.String("field_a", fieldA), zap.String("field_b", fieldB))
		}
		return nil, nil
	}

	var xs, ys []float64
	for _, rec := range records {
		va, _ := rec.Get(colA)
		vb, _ := rec.Get(colB)
		x, okX := va.AsFloat()
		y, okY := vb.AsFloat()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// columnOrder liefert alle Feldnamen der Records in first-seen-Reihenfolge.
func columnOrder(records []models.Record) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, field := range rec.Fields() {
			if !seen[field] {
				seen[field] = true
				columns = append(columns, field)
			}
		}
	}
	return columns
}

// resolveColumn sucht den passenden Spaltennamen zum Ziel: erst exakter
// case-insensitiver Treffer, dann Substring-Match in beide Richtungen.
func resolveColumn(columns []string, target string) (string, bool) {
	targetLower := strings.ToLower(target)

	for _, col := range columns {
		if strings.ToLower(col) == targetLower {
			return col, true
		}
	}
	for _, col := range columns {
		colLower := strings.ToLower(col)
		if strings.Contains(colLower, targetLower) || strings.Contains(targetLower, colLower) {
			return col, true
		}
	}
	return "", false
}
