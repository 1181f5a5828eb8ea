package models

// Task repräsentiert eine Analyse-Anfrage: Aufgabenbeschreibung plus eine
// geordnete Liste von Fragen. Wird einmal pro Request geparst und danach
// nicht mehr verändert.
type Task struct {
	Task      string   `json:"task"`
	Questions []string `json:"questions"`
}
