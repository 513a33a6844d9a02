package store

import (
	"encoding/json"
	"fmt"

	"github.com/marketintel/decisiond/pkg/types"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows, letting the payload
// helpers below work with either a QueryRow or a Query/Next loop.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDecisionRecordPayload reads the JSONB payload column and unmarshals it
// back into the full DecisionRecord, used by the feedback queries that need
// more than the flattened columns expose.
func scanDecisionRecordPayload(row rowScanner) (types.DecisionRecord, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return types.DecisionRecord{}, fmt.Errorf("scan decision payload: %w", err)
	}
	var record types.DecisionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return types.DecisionRecord{}, fmt.Errorf("unmarshal decision payload: %w", err)
	}
	return record, nil
}
