// Package pinchange drives the three-step PIN change as an explicit state
// machine: current PIN, new PIN, confirmation, then one server call.
//
// Digit input lands in exactly one active buffer per stage. Length is
// validated client-side before any network call, buffers are cleared on
// every validation failure, and the current PIN is held in memory only long
// enough to support one transparent re-authentication; it is never
// persisted.
package pinchange

import (
	"context"
	"errors"

	"github.com/okazarin/teller/internal/client/gateway"
	"github.com/okazarin/teller/internal/client/models"
	"github.com/okazarin/teller/internal/idemx"
	"github.com/okazarin/teller/internal/logging"
)

// Stage is the flow's current position.
type Stage string

const (
	StageCurrentPIN Stage = "CURRENT_PIN"
	StageNewPIN     Stage = "NEW_PIN"
	StageConfirmPIN Stage = "CONFIRM_PIN"
	StageProcessing Stage = "PROCESSING"
	StageSuccess    Stage = "SUCCESS"
)

// PinLength is the fixed PIN size; anything else never leaves the client.
const PinLength = 6

// Validation errors surfaced on the input stages.
var (
	ErrPinLength    = errors.New("pin must be 6 digits")
	ErrPinUnchanged = errors.New("new pin must differ from the current one")
	ErrPinMismatch  = errors.New("pins do not match")
)

// ErrFlowAborted is recorded when the one-shot recovery failed and the user
// must go back through a full login.
var ErrFlowAborted = errors.New("pin change aborted, please log in again")

// Caller is the slice of the gateway the flow needs.
type Caller interface {
	PostJSON(ctx context.Context, path string, body any, out any, opts ...gateway.CallOption) error
}

// Reauthenticator recovers an expired session using the strategy that
// originally authenticated the user.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context, identifier, secret string) (models.Session, error)
}

// Flow is the PIN-change state machine. It is driven by Press/Backspace for
// keypad input and Enter to advance; it is not safe for concurrent use,
// matching the single event-loop model of the UI.
type Flow struct {
	gateway Caller
	auth    Reauthenticator
	log     logging.Logger

	identifier string
	stage      Stage
	forced     bool // current PIN was pre-known (forced-change entry)

	current string
	newPin  string
	confirm string

	// key is the idempotency key for the in-flight change. It is generated
	// when processing starts, reused across resends of that same change,
	// and discarded once the server answers definitively.
	key string

	lastErr error
	aborted bool
}

// NewFlow starts the flow at the current-PIN prompt.
func NewFlow(gw Caller, auth Reauthenticator, log logging.Logger, identifier string) *Flow {
	return &Flow{
		gateway:    gw,
		auth:       auth,
		log:        log,
		identifier: identifier,
		stage:      StageCurrentPIN,
	}
}

// NewFlowWithCurrent enters the flow with the current PIN already known (the
// forced-change path). The first stage is skipped, and a business rejection
// returns to the new-PIN prompt instead of the current-PIN one.
func NewFlowWithCurrent(gw Caller, auth Reauthenticator, log logging.Logger, identifier, current string) *Flow {
	f := NewFlow(gw, auth, log, identifier)
	f.current = current
	f.forced = true
	f.stage = StageNewPIN
	return f
}

func (f *Flow) Stage() Stage { return f.stage }

// LastError is the error to render next to the active input, or nil.
func (f *Flow) LastError() error { return f.lastErr }

// Aborted reports that the flow is dead and the user must fully log in
// again.
func (f *Flow) Aborted() bool { return f.aborted }

// Buffer returns the digits entered so far on the active stage, for masked
// display.
func (f *Flow) Buffer() string {
	if b := f.activeBuffer(); b != nil {
		return *b
	}
	return ""
}

// Press appends one keypad digit to the active buffer. Input outside the
// input stages, non-digits, and digits beyond PinLength are ignored.
func (f *Flow) Press(d rune) {
	if f.aborted || d < '0' || d > '9' {
		return
	}
	b := f.activeBuffer()
	if b == nil || len(*b) >= PinLength {
		return
	}
	*b += string(d)
}

// Backspace removes the last digit from the active buffer.
func (f *Flow) Backspace() {
	b := f.activeBuffer()
	if b == nil || len(*b) == 0 {
		return
	}
	*b = (*b)[:len(*b)-1]
}

// Cancel destroys the flow from any input stage without a server call. All
// entered PINs are wiped. Cancelling during processing or after success is
// ignored; an already-sent request cannot be recalled.
func (f *Flow) Cancel() {
	if f.stage == StageProcessing || f.stage == StageSuccess {
		return
	}
	f.wipe()
	f.aborted = true
}

// Enter advances the machine: it validates the active buffer, moves to the
// next stage, and from the confirmation stage submits the change. After a
// transient failure the flow sits in StageProcessing and Enter retries the
// send with the same idempotency key.
func (f *Flow) Enter(ctx context.Context) error {
	if f.aborted {
		return ErrFlowAborted
	}

	switch f.stage {
	case StageCurrentPIN:
		if len(f.current) != PinLength {
			return f.inputError(&f.current, ErrPinLength)
		}
		f.lastErr = nil
		f.stage = StageNewPIN
		return nil

	case StageNewPIN:
		if len(f.newPin) != PinLength {
			return f.inputError(&f.newPin, ErrPinLength)
		}
		if f.newPin == f.current {
			return f.inputError(&f.newPin, ErrPinUnchanged)
		}
		f.lastErr = nil
		f.stage = StageConfirmPIN
		return nil

	case StageConfirmPIN:
		if len(f.confirm) != PinLength {
			return f.inputError(&f.confirm, ErrPinLength)
		}
		if f.confirm != f.newPin {
			return f.inputError(&f.confirm, ErrPinMismatch)
		}
		f.lastErr = nil
		f.stage = StageProcessing
		return f.process(ctx)

	case StageProcessing:
		return f.process(ctx)

	default: // StageSuccess: terminal, nothing more to do
		return nil
	}
}

func (f *Flow) activeBuffer() *string {
	switch f.stage {
	case StageCurrentPIN:
		return &f.current
	case StageNewPIN:
		return &f.newPin
	case StageConfirmPIN:
		return &f.confirm
	default:
		return nil
	}
}

func (f *Flow) inputError(buffer *string, err error) error {
	// Clearing on every validation failure keeps stale digits from leaking
	// into the next attempt.
	*buffer = ""
	f.lastErr = err
	return err
}

type changePinRequest struct {
	CurrentPin string `json:"current_pin"`
	NewPin     string `json:"new_pin"`
}

func (f *Flow) submit(ctx context.Context) error {
	body := changePinRequest{CurrentPin: f.current, NewPin: f.newPin}
	return f.gateway.PostJSON(ctx, "/auth/pin", body, nil, gateway.WithIdempotencyKey(f.key))
}

func (f *Flow) process(ctx context.Context) error {
	if f.key == "" {
		f.key = idemx.NewKey(idemx.PrefixPinChange)
	}

	err := f.submit(ctx)

	if errors.Is(err, gateway.ErrSessionExpired) {
		// One silent recovery: the in-memory current PIN doubles as the
		// secret for the strategy that logged this user in. The resend
		// reuses the same idempotency key.
		f.log.Info(ctx, "session expired mid pin change, re-authenticating")
		if _, rerr := f.auth.Reauthenticate(ctx, f.identifier, f.current); rerr != nil {
			f.abort(rerr)
			return rerr
		}
		err = f.submit(ctx)
		if errors.Is(err, gateway.ErrSessionExpired) {
			f.abort(err)
			return err
		}
	}

	if err == nil {
		f.finish(ctx)
		return nil
	}

	var rf *gateway.RequestFailed
	if errors.As(err, &rf) && rf.Status < 500 {
		f.reject(err)
		return err
	}

	// Transport-class failure: stay in PROCESSING with buffers and key
	// intact so the next Enter resends the same change.
	f.lastErr = err
	return err
}

func (f *Flow) finish(ctx context.Context) {
	f.log.Info(ctx, "pin changed")
	f.wipe()
	f.lastErr = nil
	f.stage = StageSuccess
}

// reject handles a business rejection (typically a wrong current PIN): the
// change is definitively refused, so the key is discarded and the user
// re-enters from the start. On the forced-change path the pre-known current
// PIN is kept and only the new PIN is re-prompted.
func (f *Flow) reject(err error) {
	f.newPin = ""
	f.confirm = ""
	f.key = ""
	f.lastErr = err
	if f.forced {
		f.stage = StageNewPIN
		return
	}
	f.current = ""
	f.stage = StageCurrentPIN
}

func (f *Flow) abort(err error) {
	f.wipe()
	f.aborted = true
	f.lastErr = err
}

func (f *Flow) wipe() {
	f.current = ""
	f.newPin = ""
	f.confirm = ""
	f.key = ""
}
