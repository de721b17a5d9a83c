// Package command decodes the input stream into an ordered sequence of commands.
package command

import (
	"encoding/json"
	"fmt"
	"io"
)

// Command is one decoded unit of work: a target identifier, a capability
// method name, and the raw arguments value (JSON object or array).
// Arguments stay raw here; interpretation against the method's parameter
// list happens at dispatch time.
type Command struct {
	Target    string          `json:"target"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// DecodeError reports that the input stream is not structurally
// well-formed. It is the one fatal error class: no command boundary can
// be established, so the whole run aborts.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode input: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder lazily produces Commands from a stream holding a top-level
// JSON array of objects. It makes a single forward pass and is not
// restartable.
type Decoder struct {
	dec     *json.Decoder
	started bool
	done    bool
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next Command in input order. It returns io.EOF once
// the batch is exhausted and *DecodeError if the stream is structurally
// malformed (not an array, an element that is not an object, truncated
// input). A well-formed object missing fields still decodes; its
// failure point is dispatch, not here.
func (d *Decoder) Next() (*Command, error) {
	if d.done {
		return nil, io.EOF
	}
	if !d.started {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("reading top-level token: %w", err)}
		}
		delim, ok := tok.(json.Delim)
		if !ok || delim != '[' {
			return nil, &DecodeError{Err: fmt.Errorf("expected a top-level array, got %v", tok)}
		}
		d.started = true
	}

	if d.dec.More() {
		var cmd Command
		if err := d.dec.Decode(&cmd); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("decoding command: %w", err)}
		}
		return &cmd, nil
	}

	// Consume the closing bracket.
	if _, err := d.dec.Token(); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("reading array end: %w", err)}
	}
	d.done = true
	return nil, io.EOF
}
