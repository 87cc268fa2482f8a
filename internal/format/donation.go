package format

import (
	"encoding/json"

	"github.com/xaenox/datadonation/internal/models"
)

type donatedTable struct {
	ID   string           `json:"id"`
	Rows []map[string]any `json:"data_frame"`
}

// DonationPayload serializes the tables a user approved, one record per row.
func DonationPayload(tables []models.ExtractionResult) (string, error) {
	out := make([]donatedTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, donatedTable{ID: t.ID, Rows: t.Table.Records()})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
