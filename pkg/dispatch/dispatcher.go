package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/morezero/settings-dispatch/pkg/capability"
	"github.com/morezero/settings-dispatch/pkg/command"
	"github.com/morezero/settings-dispatch/pkg/events"
)

const logPrefix = "dispatch:dispatcher"

// Resolver produces the target object for an opaque identifier. It is
// the external collaborator boundary: any error it returns classifies
// the command as TARGET_NOT_FOUND.
type Resolver interface {
	Resolve(ctx context.Context, targetID string) (capability.Target, error)
}

// Dispatcher routes decoded commands to capability handlers. It holds
// no cross-command state; commands are processed strictly in input
// order and each failure is isolated to its own Result.
type Dispatcher struct {
	registry  *capability.Registry
	resolver  Resolver
	publisher events.EventPublisher
}

// DispatcherParams holds parameters for NewDispatcher.
type DispatcherParams struct {
	Registry *capability.Registry
	Resolver Resolver
	// Publisher receives change events after successful mutating
	// invocations. Nil means no events.
	Publisher events.EventPublisher
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(params DispatcherParams) *Dispatcher {
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	return &Dispatcher{
		registry:  params.Registry,
		resolver:  params.Resolver,
		publisher: pub,
	}
}

// Dispatch processes one command: resolve the target, resolve the
// method, coerce arguments, invoke, classify the outcome. It never
// returns an error; every failure mode is captured in the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *command.Command) *Result {
	slog.Debug(fmt.Sprintf("%s - target=%s method=%s", logPrefix, cmd.Target, cmd.Method))

	target, err := d.resolver.Resolve(ctx, cmd.Target)
	if err != nil {
		return failure(cmd.Target, cmd.Method, KindTargetNotFound,
			fmt.Sprintf("cannot resolve target %q: %v", cmd.Target, err))
	}

	desc, handler, ok := d.registry.Resolve(cmd.Method)
	if !ok {
		return failure(cmd.Target, cmd.Method, KindMethodNotExposed,
			fmt.Sprintf("method %q is not exposed", cmd.Method))
	}

	args, argErr := d.coerceArguments(desc, cmd.Arguments)
	if argErr != nil {
		return &Result{Target: cmd.Target, Method: cmd.Method, Error: argErr}
	}

	value, invErr := invoke(ctx, handler, target, args)
	if invErr != nil {
		return &Result{Target: cmd.Target, Method: cmd.Method, Error: invErr}
	}

	// Capabilities that return nothing are the mutating ones; let
	// subscribers know the target changed.
	if desc.Returns == capability.ReturnNone {
		d.publishChanged(ctx, cmd, desc, args)
	}

	return success(cmd.Target, cmd.Method, value)
}

// Run drives the full decode → dispatch → emit loop over a batch. Each
// Result is handed to emit as soon as it is produced, preserving input
// order. Only structural decode failures (and emit failures) abort the
// run; per-command failures are already folded into Results.
func (d *Dispatcher) Run(ctx context.Context, dec *command.Decoder, emit func(*Result) error) error {
	for {
		cmd, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(d.Dispatch(ctx, cmd)); err != nil {
			return fmt.Errorf("%s - emit result: %w", logPrefix, err)
		}
	}
}

// coerceArguments fetches and coerces the untyped arguments against the
// method's declared parameter list. Arguments may be a JSON object
// (matched by name) or a JSON array (matched by position). Absent
// optional parameters take their declared default; everything else that
// does not line up is an ARGUMENT_MISMATCH.
func (d *Dispatcher) coerceArguments(desc capability.Descriptor, raw json.RawMessage) ([]interface{}, *ErrorDetail) {
	named, positional, err := parseArguments(raw)
	if err != nil {
		return nil, &ErrorDetail{Kind: KindArgumentMismatch, Message: err.Error()}
	}

	args := make([]interface{}, len(desc.Params))
	for i, p := range desc.Params {
		v, present := lookupArgument(p.Name, i, named, positional)
		if !present {
			if p.Optional {
				args[i] = p.Default
				continue
			}
			return nil, &ErrorDetail{
				Kind:    KindArgumentMismatch,
				Message: fmt.Sprintf("missing required argument %q (%s)", p.Name, p.Kind),
			}
		}
		coerced, err := p.Kind.Coerce(v)
		if err != nil {
			return nil, &ErrorDetail{
				Kind:    KindArgumentMismatch,
				Message: fmt.Sprintf("argument %q: %v", p.Name, err),
			}
		}
		args[i] = coerced
	}
	return args, nil
}

// parseArguments splits the raw arguments value into its named or
// positional form. Absent and null arguments mean "no arguments".
func parseArguments(raw json.RawMessage) (map[string]interface{}, []interface{}, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("arguments are not valid JSON: %v", err)
	}
	switch v := decoded.(type) {
	case nil:
		return nil, nil, nil
	case map[string]interface{}:
		return v, nil, nil
	case []interface{}:
		return nil, v, nil
	default:
		return nil, nil, errors.New("arguments must be an object or an array")
	}
}

func lookupArgument(name string, pos int, named map[string]interface{}, positional []interface{}) (interface{}, bool) {
	if named != nil {
		v, ok := named[name]
		return v, ok
	}
	if pos < len(positional) {
		return positional[pos], true
	}
	return nil, false
}

// invoke runs the handler with panic containment. Handler errors and
// panics both classify as INVOCATION_FAILED; a numeric diagnostic code
// is surfaced when the error exposes one.
func invoke(ctx context.Context, handler capability.Handler, target capability.Target, args []interface{}) (value interface{}, detail *ErrorDetail) {
	defer func() {
		if r := recover(); r != nil {
			detail = &ErrorDetail{
				Kind:    KindInvocationFailed,
				Message: fmt.Sprintf("panic during invocation: %v", r),
			}
		}
	}()

	value, err := handler(ctx, target, args)
	if err != nil {
		detail = &ErrorDetail{Kind: KindInvocationFailed, Message: err.Error()}
		var coded interface{ ErrorCode() int }
		if errors.As(err, &coded) {
			detail.Code = coded.ErrorCode()
		}
		return nil, detail
	}
	return value, nil
}

func (d *Dispatcher) publishChanged(ctx context.Context, cmd *command.Command, desc capability.Descriptor, args []interface{}) {
	event := &events.SettingChangedEvent{
		Target:    cmd.Target,
		Method:    cmd.Method,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for i, p := range desc.Params {
		if p.Name == "valueName" {
			if s, ok := args[i].(string); ok {
				event.ValueName = s
			}
		}
	}
	if err := d.publisher.PublishChanged(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - publish change event for %s: %v", logPrefix, cmd.Target, err))
	}
}
