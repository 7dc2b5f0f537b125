package models

import (
	"github.com/bytedance/sonic"
)

// codec mirrors encoding/json behaviour (sorted map keys, HTML escaping)
var codec = sonic.ConfigStd

// EncodeBoard serializes a board. Pretty output is indented with two spaces.
func EncodeBoard(b Board, pretty bool) ([]byte, error) {
	b.Ensure()
	if pretty {
		return codec.MarshalIndent(b, "", "  ")
	}
	return codec.Marshal(b)
}

// DecodeBoard parses a board in the current layout and normalizes it
func DecodeBoard(data []byte, newID func() string) (Board, error) {
	var b Board
	if err := codec.Unmarshal(data, &b); err != nil {
		return Board{}, err
	}
	NormalizeBoard(&b, newID)
	return b, nil
}

// Marshal encodes any value with the board codec
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// MarshalIndent encodes any value indented with two spaces
func MarshalIndent(v any) ([]byte, error) {
	return codec.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes any value with the board codec
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// NormalizeBoard repairs a typed board in place: nil collections are allocated, tasks
// without id or title are filled in, unknown priorities fall back to medium and
// duplicate ids are replaced so each task occurs once.
func NormalizeBoard(b *Board, newID func() string) {
	if newID == nil {
		newID = GenerateID
	}
	b.Ensure()

	seen := make(map[string]struct{}, b.Count())
	for _, c := range AllColumns {
		tasks := b.Column(c)
		for i := range tasks {
			t := &tasks[i]
			if _, dup := seen[t.ID]; t.ID == "" || dup {
				t.ID = newID()
			}
			seen[t.ID] = struct{}{}
			if t.Title == "" {
				t.Title = UntitledTask
			}
			if p, ok := ParsePriority(string(t.Priority)); ok {
				t.Priority = p
			} else {
				t.Priority = PriorityMedium
			}
			if t.Deadline != "" {
				if d, ok := normalizeDeadline(t.Deadline); ok {
					t.Deadline = d
				} else {
					t.Deadline = ""
				}
			}
		}
	}

	for id, entries := range b.History {
		if _, ok := seen[id]; !ok || len(entries) == 0 {
			delete(b.History, id)
		}
	}
	for id := range b.Meta.NotifiedDeadlines {
		if _, ok := seen[id]; !ok {
			delete(b.Meta.NotifiedDeadlines, id)
		}
	}
}
