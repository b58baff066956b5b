package events

import (
	"time"

	"github.com/google/uuid"
)

// TypeCodeSetChanged is published after a unit of work commits writes that
// touched one or more code-set groups.
const TypeCodeSetChanged = "codeset.changed"

func NewCodeSetChanged(typeCodes []string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TypeCodeSetChanged,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"type_codes": typeCodes,
		},
	}
}

// CodeSetGroups extracts the touched group codes from a codeset.changed event.
func CodeSetGroups(e Event) []string {
	m, ok := e.Payload().(map[string]interface{})
	if !ok {
		return nil
	}
	switch v := m["type_codes"].(type) {
	case []string:
		return v
	case []interface{}:
		codes := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				codes = append(codes, s)
			}
		}
		return codes
	}
	return nil
}
