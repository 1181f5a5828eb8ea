package services

import (
	"regexp"
	"strconv"
	"strings"

	"data-hand/models"
)

// Regex-Patterns für die Feld-Extraktion. Analog zu den Citation-Patterns
// gilt: lieber ein false-positive als ein verlorener Wert, die Aufrufer
// behandeln "absent" als Normalfall.
var (
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	numberRunPattern  = regexp.MustCompile(`[\d.]+`)
	leadingIntPattern = regexp.MustCompile(`\d+`)
	citationPattern   = regexp.MustCompile(`\[.*?\]`)
	parenPattern      = regexp.MustCompile(`\(.*?\)`)
)

// revenueKeywords markieren einen Zellwert als Umsatz-Kandidaten.
var revenueKeywords = []string{"billion", "gross", "revenue"}

// titleFieldKeywords markieren ein Feld als Titel-Spalte.
var titleFieldKeywords = []string{"title", "film", "movie", "name"}

// ExtractYear sucht in allen Werten eines Records (in Feld-Reihenfolge) nach
// der ersten vierstelligen Jahreszahl zwischen 1900 und 2099.
func ExtractYear(rec models.Record) (int, bool) {
	for _, field := range rec.Fields() {
		v, _ := rec.Get(field)
		if v.IsAbsent() {
			continue
		}
		match := yearPattern.FindString(v.Text())
		if match == "" {
			continue
		}
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		return year, true
	}
	return 0, false
}

// ExtractRevenueBillions sucht den ersten Umsatz-Kandidaten im Record und
// normiert ihn auf Milliarden. Ein Wert ist Kandidat, wenn er nach dem
// Entfernen von Kommas und Dollarzeichen eines der revenueKeywords enthält.
// "billion" wird unverändert übernommen, "million" durch 1000 geteilt; eine
// nackte Zahl über 1000 wird als Millionen-Angabe interpretiert.
func ExtractRevenueBillions(rec models.Record) (float64, bool) {
	for _, field := range rec.Fields() {
		v, _ := rec.Get(field)
		if v.IsAbsent() {
			continue
		}

		text := strings.ReplaceAll(v.Text(), ",", "")
		text = strings.ReplaceAll(text, "$", "")
		lower := strings.ToLower(text)

		if !containsAny(lower, revenueKeywords) {
			continue
		}

		match := numberRunPattern.FindString(text)
		if match == "" {
			continue
		}
		num, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}

		switch {
		case strings.Contains(lower, "billion"):
			return num, true
		case strings.Contains(lower, "million"):
			return num / 1000, true
		case num > 1000:
			return num / 1000, true
		default:
			return num, true
		}
	}
	return 0, false
}

// ExtractTitle liefert den Filmtitel eines Records. Bevorzugt wird ein Feld,
// dessen Name nach einer Titel-Spalte aussieht; der Wert wird von Zitations-
// und Klammerzusätzen befreit. Fallback ist der erste String-Wert mit mehr
// als 3 Zeichen, gekappt auf 50 Zeichen, sonst "Unknown".
func ExtractTitle(rec models.Record) string {
	for _, field := range rec.Fields() {
		if !containsAny(strings.ToLower(field), titleFieldKeywords) {
			continue
		}
		v, _ := rec.Get(field)
		return CleanTitle(v.Text())
	}

	for _, field := range rec.Fields() {
		v, _ := rec.Get(field)
		if v.Kind != models.KindString {
			continue
		}
		if runes := []rune(v.Str); len(runes) > 3 {
			if len(runes) > 50 {
				return string(runes[:50])
			}
			return v.Str
		}
	}

	return "Unknown"
}

// CleanTitle entfernt Zitationsmarker [..] und Klammerzusätze (..) und trimmt
// Whitespace.
func CleanTitle(title string) string {
	title = citationPattern.ReplaceAllString(title, "")
	title = parenPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
