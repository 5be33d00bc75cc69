package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"lostfound-desk/internal/model"
)

// decodeSearch normalises both search response shapes to a slice: a bare
// array of records, or the {message, count, rut, data} envelope. An empty
// body, a null body and a missing data field all mean "no records".
// Records repeating an earlier id are dropped so ids stay unique.
func decodeSearch(body []byte) ([]model.Garment, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Garment{}, "", nil
	}

	var (
		records []model.Garment
		message string
	)
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, "", fmt.Errorf("decode record list: %w", err)
		}
	case '{':
		var env model.SearchEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, "", fmt.Errorf("decode search envelope: %w", err)
		}
		records, message = env.Data, env.Message
	default:
		return nil, "", fmt.Errorf("unexpected search body starting with %q", trimmed[0])
	}

	out := make([]model.Garment, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for _, g := range records {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		out = append(out, g)
	}
	return out, message, nil
}

// decodeCreated reads the create response. A body without a positive id is
// not a created record.
func decodeCreated(body []byte) (*model.CreatedGarment, error) {
	var created model.CreatedGarment
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode created record: %w", err)
	}
	if created.ID <= 0 {
		return nil, fmt.Errorf("created record has no id")
	}
	return &created, nil
}

// decodeStatusUpdate reads the optional body of a status mutation. Only an
// empty body is accepted as "nothing to say"; anything else must parse.
func decodeStatusUpdate(body []byte) (*model.StatusUpdateResponse, error) {
	var resp model.StatusUpdateResponse
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &resp, nil
	}
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("decode status update: %w", err)
	}
	return &resp, nil
}
