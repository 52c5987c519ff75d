package model

import "time"

// Evaluation is a persisted record of one qualification run for a client.
type Evaluation struct {
	ID             string                `json:"id"`
	ClientName     string                `json:"client_name"`
	Company        string                `json:"company"`
	Profile        ClientProfile         `json:"profile"`
	Results        []QualificationResult `json:"results"`
	Potential      FundingPotential      `json:"funding_potential"`
	QualifiedCount int                   `json:"qualified_count"`
	CreatedAt      time.Time             `json:"created_at"`
}

// CatalogSnapshot records one load of the lender catalog from its source.
type CatalogSnapshot struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	RowCount    int              `json:"row_count"`
	SkippedRows int              `json:"skipped_rows"`
	Lenders     []LenderCriteria `json:"lenders"`
	LoadedAt    time.Time        `json:"loaded_at"`
}
