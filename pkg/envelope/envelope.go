// Package envelope decodes the TourAPI response envelope and normalizes its
// inconsistent shapes into a single internal form.
//
// The upstream returns two structurally different payloads: a success
// envelope with a nested response/header/body, and a flat error envelope
// carrying only responseTime/resultCode/resultMsg. Both use resultCode
// "0000" as the sole success indicator. Inside a success body, the item
// field may be absent, a bare object, or an array.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultCodeOK is the upstream's success code in either envelope shape.
const ResultCodeOK = "0000"

// UpstreamError is a well-formed upstream response reporting an
// application-level failure (resultCode other than "0000").
type UpstreamError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %s: %s", e.Code, e.Message)
}

// DecodeError indicates the response body could not be interpreted as the
// expected structure.
type DecodeError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode error: %s", e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ItemList is the body's item field normalized to a slice of raw items.
// The upstream encodes zero items as an absent field (or empty string),
// one item as a bare object, and several items as an array.
type ItemList []json.RawMessage

// UnmarshalJSON resolves the absent/single/array ambiguity at the
// deserialization boundary. The ambiguity never leaks past this type.
func (l *ItemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte(`""`)) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var many []json.RawMessage
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}

	// Single bare item
	single := make(json.RawMessage, len(trimmed))
	copy(single, trimmed)
	*l = ItemList{single}
	return nil
}

// flexInt tolerates the upstream's habit of returning counts as either JSON
// numbers or quoted strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*f = 0
		return nil
	}
	trimmed = bytes.Trim(trimmed, `"`)

	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// Body is the normalized success payload handed to callers. Items is always
// a (possibly empty) slice, never a bare object.
type Body struct {
	Items      ItemList
	NumOfRows  int
	PageNo     int
	TotalCount int
}

// itemsField handles the upstream returning items as "" instead of an
// object when a listing is empty.
type itemsField struct {
	Item ItemList `json:"item"`
}

func (f *itemsField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		f.Item = nil
		return nil
	}

	type plain itemsField
	return json.Unmarshal(trimmed, (*plain)(f))
}

// rawBody mirrors the wire shape of a success body.
type rawBody struct {
	Items      itemsField `json:"items"`
	NumOfRows  flexInt    `json:"numOfRows"`
	PageNo     flexInt    `json:"pageNo"`
	TotalCount flexInt    `json:"totalCount"`
}

// Header carries the upstream's per-response result code and message.
type Header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

// Raw is the outermost decoded JSON object in either of its two shapes.
// An error envelope sets the top-level fields and has no Response; a
// success envelope nests everything under Response.
type Raw struct {
	ResponseTime string `json:"responseTime,omitempty"`
	ResultCode   string `json:"resultCode,omitempty"`
	ResultMsg    string `json:"resultMsg,omitempty"`

	Response *struct {
		Header Header   `json:"header"`
		Body   *rawBody `json:"body"`
	} `json:"response,omitempty"`
}

// Decode parses raw bytes into an envelope. Fails with DecodeError when the
// payload is not JSON (the upstream occasionally returns XML error pages
// regardless of _type=json).
func Decode(data []byte) (*Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Reason: "response is not valid JSON", Err: err}
	}
	return &raw, nil
}

// Normalize converts a raw envelope into a uniform success body or a typed
// failure.
//
// The error-envelope check must run first: an application-level error has
// top-level resultCode/resultMsg and no response field, and reading it as a
// success body would misreport it as malformed.
func Normalize(raw *Raw) (*Body, error) {
	if raw == nil {
		return nil, &DecodeError{Reason: "empty envelope"}
	}

	// Flat error envelope
	if raw.Response == nil && raw.ResultCode != "" {
		if raw.ResultCode != ResultCodeOK {
			return nil, &UpstreamError{Code: raw.ResultCode, Message: raw.ResultMsg}
		}
		return &Body{}, nil
	}

	if raw.Response == nil || raw.Response.Body == nil {
		return nil, &DecodeError{Reason: "envelope has no response body"}
	}

	if h := raw.Response.Header; h.ResultCode != "" && h.ResultCode != ResultCodeOK {
		return nil, &UpstreamError{Code: h.ResultCode, Message: h.ResultMsg}
	}

	rb := raw.Response.Body
	items := rb.Items.Item
	if items == nil {
		items = ItemList{}
	}

	return &Body{
		Items:      items,
		NumOfRows:  int(rb.NumOfRows),
		PageNo:     int(rb.PageNo),
		TotalCount: int(rb.TotalCount),
	}, nil
}
