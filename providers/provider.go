package providers

import (
	"context"

	"data-hand/models"
)

// TableProvider ist das Interface, das jede Tabellen-Quelle implementieren
// muss. Ein Provider liefert rohe Kandidaten-Tabellen; Normalisierung und
// Fallback sind Sache des Orchestrators.
type TableProvider interface {
	// FetchTables holt alle Kandidaten-Tabellen der Quelle in
	// Dokument-Reihenfolge. url überschreibt die konfigurierte Standard-URL,
	// wenn nicht leer.
	FetchTables(ctx context.Context, url string) ([]models.RawTable, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "wikipedia").
	Name() string
}
