package services

import (
	"errors"
	"log"
)

// maxImportRows caps one bulk import request. Larger inputs are rejected
// wholesale before any row is touched.
const maxImportRows = 200

type ImportRowError struct {
	Row    int      `json:"row"` // 1-based input position
	Errors []string `json:"errors"`
}

type ImportResult struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// Import creates one buyer per row, owned by ownerID, each with an
// "imported" history entry. Rows are processed strictly in input order and
// fail independently: a bad row is recorded in the report and the rest of
// the batch continues.
func (s *BuyerService) Import(rows []CreateBuyerInput, ownerID string) (*ImportResult, error) {
	if len(rows) > maxImportRows {
		return nil, ErrTooManyRows
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	for i, row := range rows {
		if verr := ValidateImportRow(row); verr != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: i + 1, Errors: verr.Messages()})
			continue
		}

		if _, err := s.create(row, ownerID, "imported"); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: i + 1, Errors: rowErrorMessages(err)})
			continue
		}
		result.Success++
	}
	return result, nil
}

func rowErrorMessages(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	// Storage failures stay opaque in the report; details go to the log.
	log.Printf("import row failed: %v", err)
	return []string{"failed to save row"}
}
