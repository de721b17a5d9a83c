package setting

import (
	"context"
	"testing"

	"github.com/morezero/settings-dispatch/pkg/capability"
)

const capabilitiesTestPrefix = "setting:capabilities_test"

func TestCapabilities_Table(t *testing.T) {
	reg := Capabilities()

	want := map[string]capability.ReturnKind{
		"GetValue":     capability.ReturnValue,
		"SetValue":     capability.ReturnNone,
		"ListValues":   capability.ReturnSequence,
		"Invoke":       capability.ReturnNone,
		"IsEnabled":    capability.ReturnBoolean,
		"IsApplicable": capability.ReturnBoolean,
	}
	if reg.Len() != len(want) {
		t.Fatalf("%s - registered %d capabilities, want %d", capabilitiesTestPrefix, reg.Len(), len(want))
	}
	for name, returns := range want {
		desc, handler, ok := reg.Resolve(name)
		if !ok {
			t.Errorf("%s - %s not registered", capabilitiesTestPrefix, name)
			continue
		}
		if handler == nil {
			t.Errorf("%s - %s has nil handler", capabilitiesTestPrefix, name)
		}
		if desc.Returns != returns {
			t.Errorf("%s - %s returns %s, want %s", capabilitiesTestPrefix, name, desc.Returns, returns)
		}
	}
}

func TestCapabilities_ValueNameDefaults(t *testing.T) {
	reg := Capabilities()

	for _, name := range []string{"GetValue", "SetValue"} {
		desc, _, _ := reg.Resolve(name)
		if len(desc.Params) == 0 {
			t.Fatalf("%s - %s has no params", capabilitiesTestPrefix, name)
		}
		p := desc.Params[0]
		if p.Name != "valueName" || !p.Optional || p.Default != PrimaryValueName {
			t.Errorf("%s - %s valueName param = %+v", capabilitiesTestPrefix, name, p)
		}
	}

	desc, _, _ := reg.Resolve("SetValue")
	if desc.Params[1].Name != "newValue" || desc.Params[1].Kind != capability.Any || desc.Params[1].Optional {
		t.Errorf("%s - SetValue newValue param = %+v", capabilitiesTestPrefix, desc.Params[1])
	}
}

func TestHandlers_RejectForeignTargets(t *testing.T) {
	reg := Capabilities()
	_, handler, _ := reg.Resolve("GetValue")

	if _, err := handler(context.Background(), "not-a-setting", []interface{}{PrimaryValueName}); err == nil {
		t.Errorf("%s - expected error for non-setting target", capabilitiesTestPrefix)
	}
}

func TestHandlers_GetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := Capabilities()
	s := brightness()

	_, setH, _ := reg.Resolve("SetValue")
	if _, err := setH(ctx, s, []interface{}{PrimaryValueName, 50.0}); err != nil {
		t.Fatalf("%s - set: %v", capabilitiesTestPrefix, err)
	}

	_, getH, _ := reg.Resolve("GetValue")
	v, err := getH(ctx, s, []interface{}{PrimaryValueName})
	if err != nil {
		t.Fatalf("%s - get: %v", capabilitiesTestPrefix, err)
	}
	if v != 50.0 {
		t.Errorf("%s - got %v, want 50", capabilitiesTestPrefix, v)
	}
}
