package models

import "time"

// AnalysisRun protokolliert einen verarbeiteten Analyse-Request. Gespeichert
// werden Aufgabe, Domain und die JSON-kodierten Ergebnisse, nie die
// gescrapten Rohdaten selbst.
type AnalysisRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	TaskText      string `json:"task_text" gorm:"type:text"`
	Domain        string `json:"domain" gorm:"index"`
	QuestionCount int    `json:"question_count"`
	ResultsJSON   string `json:"results_json" gorm:"type:text"`
	DurationMS    int64  `json:"duration_ms"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
