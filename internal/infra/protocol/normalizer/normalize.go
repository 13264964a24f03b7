package normalizer

import (
	"fmt"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/protocol"
)

// Normalize turns a raw record of either dialect into a CommandRecord.
// keymap only applies to stream records.
func Normalize(rec protocol.RawRecord, keymap map[string]string) (domain.CommandRecord, error) {
	switch typed := rec.(type) {
	case protocol.KeyValueRecord:
		return NormalizeKeyValue(typed), nil
	case *protocol.KeyValueRecord:
		return NormalizeKeyValue(*typed), nil
	case protocol.StreamRecord:
		return NormalizeStream(typed, keymap), nil
	case *protocol.StreamRecord:
		return NormalizeStream(*typed, keymap), nil
	default:
		return domain.CommandRecord{}, domain.E(domain.CodeInternal, "normalizer.normalize", fmt.Sprintf("unsupported record type %T", rec), nil)
	}
}

// NormalizeAll normalizes records in order, stopping at the first failure.
func NormalizeAll(records []protocol.RawRecord, keymap map[string]string) ([]domain.CommandRecord, error) {
	out := make([]domain.CommandRecord, 0, len(records))
	for _, rec := range records {
		normalized, err := Normalize(rec, keymap)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}
