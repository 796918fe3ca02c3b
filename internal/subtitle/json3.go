package subtitle

import (
	"encoding/json"
	"fmt"
	"iter"
)

// json3Document is YouTube's timed-text JSON. Only text-bearing fields are kept.
type json3Document struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	Segs []json3Segment `json:"segs,omitempty"`
}

type json3Segment struct {
	UTF8 *string `json:"utf8,omitempty"`
}

func decodeJSON3(data []byte) (iter.Seq[string], error) {
	var doc json3Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse json3 subtitle: %w", err)
	}

	return func(yield func(string) bool) {
		for _, event := range doc.Events {
			for _, seg := range event.Segs {
				if seg.UTF8 == nil {
					continue
				}
				if !yield(*seg.UTF8) {
					return
				}
			}
		}
	}, nil
}
