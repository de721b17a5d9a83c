package encode

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/morezero/settings-dispatch/pkg/dispatch"
)

const encoderTestPrefix = "encode:encoder_test"

func TestWrite_SuccessRecordShape(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	res := &dispatch.Result{Target: "system.display.brightness", Method: "GetValue", Ok: true, Value: 42.0}
	if err := enc.Write(res); err != nil {
		t.Fatalf("%s - unexpected error: %v", encoderTestPrefix, err)
	}

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("%s - record not parseable: %v", encoderTestPrefix, err)
	}
	if rec["ok"] != true {
		t.Errorf("%s - ok = %v", encoderTestPrefix, rec["ok"])
	}
	if rec["value"] != 42.0 {
		t.Errorf("%s - value = %v", encoderTestPrefix, rec["value"])
	}
	if _, hasErr := rec["error"]; hasErr {
		t.Errorf("%s - success record should not carry error", encoderTestPrefix)
	}
}

func TestWrite_NullValueIsStillPresent(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	// A void capability (SetValue, Invoke) succeeds with no value.
	if err := enc.Write(&dispatch.Result{Target: "x", Method: "Invoke", Ok: true, Value: nil}); err != nil {
		t.Fatalf("%s - unexpected error: %v", encoderTestPrefix, err)
	}
	if !strings.Contains(buf.String(), `"value":null`) {
		t.Errorf("%s - success record must always carry value, got %s", encoderTestPrefix, buf.String())
	}
}

func TestWrite_FalseValueIsStillPresent(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Write(&dispatch.Result{Target: "x", Method: "IsEnabled", Ok: true, Value: false}); err != nil {
		t.Fatalf("%s - unexpected error: %v", encoderTestPrefix, err)
	}
	if !strings.Contains(buf.String(), `"value":false`) {
		t.Errorf("%s - got %s", encoderTestPrefix, buf.String())
	}
}

func TestWrite_FailureRecordShape(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	res := &dispatch.Result{
		Target: "missing",
		Method: "GetValue",
		Error:  &dispatch.ErrorDetail{Kind: dispatch.KindTargetNotFound, Message: "no such target", Code: 2},
	}
	if err := enc.Write(res); err != nil {
		t.Fatalf("%s - unexpected error: %v", encoderTestPrefix, err)
	}

	var rec struct {
		Ok    bool                  `json:"ok"`
		Error *dispatch.ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("%s - record not parseable: %v", encoderTestPrefix, err)
	}
	if rec.Ok {
		t.Errorf("%s - failure record has ok=true", encoderTestPrefix)
	}
	if rec.Error == nil || rec.Error.Kind != dispatch.KindTargetNotFound || rec.Error.Code != 2 {
		t.Errorf("%s - unexpected error detail %+v", encoderTestPrefix, rec.Error)
	}
}

func TestWrite_EveryRecordNewlineTerminated(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	for i := 0; i < 3; i++ {
		if err := enc.Write(&dispatch.Result{Target: "x", Method: "GetValue", Ok: true, Value: float64(i)}); err != nil {
			t.Fatalf("%s - write %d: %v", encoderTestPrefix, i, err)
		}
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("%s - last record must keep its trailing separator", encoderTestPrefix)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("%s - got %d records, want 3", encoderTestPrefix, len(lines))
	}
	for i, line := range lines {
		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("%s - record %d not independently parseable: %v", encoderTestPrefix, i, err)
		}
	}
}
