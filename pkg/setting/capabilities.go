package setting

import (
	"context"
	"fmt"

	"github.com/morezero/settings-dispatch/pkg/capability"
)

// PrimaryValueName is the conventional value name capabilities default
// to when the caller omits valueName.
const PrimaryValueName = "Value"

// Target kinds the directory declares.
const (
	KindToggle    = "toggle"
	KindRange     = "range"
	KindChoice    = "choice"
	KindAction    = "action"
	KindComposite = "composite"
	KindCustom    = "custom"
)

// Capabilities builds the static registration table for *Setting: the
// single source of truth for what external callers may invoke. Built
// once at startup and shared by dispatch and self-description.
func Capabilities() *capability.Registry {
	reg := capability.NewRegistry()

	reg.MustRegister(capability.Descriptor{
		Name: "GetValue",
		Params: []capability.Param{
			{Name: "valueName", Kind: capability.String, Optional: true, Default: PrimaryValueName},
		},
		Returns: capability.ReturnValue,
	}, handleGetValue)

	reg.MustRegister(capability.Descriptor{
		Name: "SetValue",
		Params: []capability.Param{
			{Name: "valueName", Kind: capability.String, Optional: true, Default: PrimaryValueName},
			{Name: "newValue", Kind: capability.Any},
		},
		Returns: capability.ReturnNone,
	}, handleSetValue)

	reg.MustRegister(capability.Descriptor{
		Name:    "ListValues",
		Returns: capability.ReturnSequence,
	}, handleListValues)

	reg.MustRegister(capability.Descriptor{
		Name:    "Invoke",
		Returns: capability.ReturnNone,
	}, handleInvoke)

	reg.MustRegister(capability.Descriptor{
		Name:    "IsEnabled",
		Returns: capability.ReturnBoolean,
	}, handleIsEnabled)

	reg.MustRegister(capability.Descriptor{
		Name:    "IsApplicable",
		Returns: capability.ReturnBoolean,
	}, handleIsApplicable)

	return reg
}

func asSetting(target capability.Target) (*Setting, error) {
	s, ok := target.(*Setting)
	if !ok {
		return nil, fmt.Errorf("target is %T, not a setting", target)
	}
	return s, nil
}

func handleGetValue(ctx context.Context, target capability.Target, args []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return s.GetValue(ctx, args[0].(string))
}

func handleSetValue(ctx context.Context, target capability.Target, args []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return nil, s.SetValue(ctx, args[0].(string), args[1])
}

func handleListValues(ctx context.Context, target capability.Target, _ []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return s.ListValues(ctx)
}

func handleInvoke(ctx context.Context, target capability.Target, _ []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return nil, s.Invoke(ctx)
}

func handleIsEnabled(ctx context.Context, target capability.Target, _ []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return s.IsEnabled(ctx)
}

func handleIsApplicable(ctx context.Context, target capability.Target, _ []interface{}) (interface{}, error) {
	s, err := asSetting(target)
	if err != nil {
		return nil, err
	}
	return s.IsApplicable(ctx)
}
