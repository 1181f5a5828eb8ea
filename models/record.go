package models

import "strconv"

// ValueKind unterscheidet die möglichen Zelltypen eines Records.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindInt
	KindFloat
	KindString
)

// Value ist eine getaggte Union für Zellwerte (int | float | string | absent).
type Value struct {
	Kind  ValueKind
	Int   int
	Float float64
	Str   string
}

// AbsentValue steht für eine fehlende oder nicht parsbare Zelle.
func AbsentValue() Value { return Value{Kind: KindAbsent} }

// IntValue erzeugt einen Ganzzahl-Wert.
func IntValue(i int) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue erzeugt einen Gleitkomma-Wert.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StringValue erzeugt einen String-Wert.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IsAbsent meldet, ob der Wert fehlt.
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// Text liefert die Textform des Wertes, wie sie für Heuristiken gescannt wird.
// Fehlende Werte ergeben den leeren String.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// AsFloat versucht eine numerische Deutung des Wertes. Strings müssen eine
// reine Zahl sein ("1,921" oder "$2.9 billion" zählen nicht als numerisch).
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Record ist eine geordnete Abbildung von Feldname auf Zellwert. Die
// Einfügereihenfolge der Felder bleibt erhalten; davon hängen die
// Extraktions-Heuristiken ab.
type Record struct {
	fields []string
	values map[string]Value
}

// NewRecord erstellt einen leeren Record.
func NewRecord() Record {
	return Record{values: make(map[string]Value)}
}

// Set speichert einen Wert unter dem Feldnamen. Ein bereits bekanntes Feld
// behält seine Position, nur der Wert wird ersetzt.
func (r *Record) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.fields = append(r.fields, name)
	}
	r.values[name] = v
}

// Get liefert den Wert eines Feldes.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields liefert die Feldnamen in Einfügereihenfolge.
func (r Record) Fields() []string {
	return r.fields
}

// Len gibt die Anzahl der Felder zurück.
func (r Record) Len() int {
	return len(r.fields)
}

// RawTable ist eine rohe, noch nicht normalisierte Tabelle: Kopfzeile plus
// Datenzeilen als Zelltexte. Transient, wird nie persistiert.
type RawTable struct {
	Headers []string
	Rows    [][]string
}
