package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/lender-qualify/internal/model"
)

// prepareEvaluation fills the id and timestamp of a new evaluation and
// keeps the denormalized columns in sync with the record.
func prepareEvaluation(e *model.Evaluation) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.ClientName == "" {
		e.ClientName = e.Profile.Name
	}
	if e.Company == "" {
		e.Company = e.Profile.Company
	}
	if e.Results == nil {
		e.Results = []model.QualificationResult{}
	}
}

func prepareSnapshot(s *model.CatalogSnapshot) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.LoadedAt.IsZero() {
		s.LoadedAt = time.Now().UTC()
	}
	if s.Lenders == nil {
		s.Lenders = []model.LenderCriteria{}
	}
}
