package lsptypes

import (
	"encoding/json"
	"fmt"
)

// ProgressToken mirrors NumberOrString from the LSP spec: $/progress tokens
// are either a JSON number or a JSON string.
type ProgressToken struct {
	name  string
	num   int64
	isStr bool
}

// ProgressTokenFromNumber builds a numeric token.
func ProgressTokenFromNumber(n int64) ProgressToken { return ProgressToken{num: n} }

// ProgressTokenFromString builds a string token.
func ProgressTokenFromString(s string) ProgressToken { return ProgressToken{name: s, isStr: true} }

// Key returns a value usable as a Go map key.
func (t ProgressToken) Key() any {
	if t.isStr {
		return "s:" + t.name
	}
	return fmt.Sprintf("n:%d", t.num)
}

func (t ProgressToken) String() string {
	if t.isStr {
		return t.name
	}
	return fmt.Sprintf("%d", t.num)
}

// UnmarshalJSON accepts a JSON number or string.
func (t *ProgressToken) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*t = ProgressToken{num: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ProgressToken{name: s, isStr: true}
		return nil
	}
	return fmt.Errorf("lsptypes: progress token must be a number or string: %s", data)
}

// MarshalJSON renders the token back to its original JSON shape.
func (t ProgressToken) MarshalJSON() ([]byte, error) {
	if t.isStr {
		return json.Marshal(t.name)
	}
	return json.Marshal(t.num)
}

// WorkDoneProgressKind discriminates the $/progress value union.
type WorkDoneProgressKind string

const (
	ProgressBegin  WorkDoneProgressKind = "begin"
	ProgressReport WorkDoneProgressKind = "report"
	ProgressEnd    WorkDoneProgressKind = "end"
)

// WorkDoneProgressValue is the polymorphic payload of a $/progress
// notification; exactly one of the Kind-specific fields is meaningful
// depending on Kind.
type WorkDoneProgressValue struct {
	Kind        WorkDoneProgressKind `json:"kind"`
	Title       string               `json:"title,omitempty"`
	Cancellable *bool                `json:"cancellable,omitempty"`
	Message     *string              `json:"message,omitempty"`
	Percentage  *uint32              `json:"percentage,omitempty"`
}

// ProgressParams is the payload of a $/progress notification.
type ProgressParams struct {
	Token ProgressToken          `json:"token"`
	Value WorkDoneProgressValue `json:"value"`
}
