// Package encode renders dispatch results as a stream of JSON records.
package encode

import (
	"encoding/json"
	"io"

	"github.com/morezero/settings-dispatch/pkg/dispatch"
)

// Record is the wire shape of one encoded result. On success "value" is
// always present (even when null); on failure "error" replaces it.
type Record struct {
	Target string                `json:"target,omitempty"`
	Method string                `json:"method,omitempty"`
	Ok     bool                  `json:"ok"`
	Value  *json.RawMessage      `json:"value,omitempty"`
	Error  *dispatch.ErrorDetail `json:"error,omitempty"`
}

// Encoder streams one record per result, in production order, without
// buffering the batch. Every record, including the last, is followed by
// a newline separator: the output is a newline-separated sequence of
// independently parseable records, not a single JSON document.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Write encodes and flushes one result record.
func (e *Encoder) Write(res *dispatch.Result) error {
	rec, err := ToRecord(res)
	if err != nil {
		return err
	}
	return e.enc.Encode(rec)
}

// ToRecord converts a Result into its wire Record. Exposed so other
// transports (e.g. the COMMS responder) share the exact record shape.
func ToRecord(res *dispatch.Result) (*Record, error) {
	rec := &Record{Target: res.Target, Method: res.Method, Ok: res.Ok}
	if res.Ok {
		data, err := json.Marshal(res.Value)
		if err != nil {
			return nil, err
		}
		raw := json.RawMessage(data)
		rec.Value = &raw
	} else {
		rec.Error = res.Error
	}
	return rec, nil
}
