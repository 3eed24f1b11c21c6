// Package action runs user-triggered remote mutations through a small per-control
// state machine:
//
//	Idle -> Confirming -> Submitting -> Succeeded|Failed -> Idle
//
// Confirming is skipped for actions without a prompt. A control that is not Idle
// refuses new work, which is how double submission is prevented.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"shobdo-cli/internal/api"
	"shobdo-cli/internal/model"
)

type State int

const (
	Idle State = iota
	Confirming
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Control identifies one trigger (a form submit button, a row's delete button).
type Control string

var (
	ErrBusy         = errors.New("action already in progress")
	ErrNotConfirmed = errors.New("action is not awaiting confirmation")
	ErrNotReady     = errors.New("action is not ready to submit")
)

// Prompt is shown before a destructive action runs.
type Prompt struct {
	Title   string
	Message string
	Danger  bool
}

type Action struct {
	// Kind names the operation for the activity log, e.g. "drama.delete".
	Kind   string
	Target string

	Confirm *Prompt
	// Pending is an optional info notification emitted right before submission.
	Pending string

	// Validate runs in Start; a failure never reaches the network.
	Validate func() error
	// Do performs the remote call. A non-empty returned message replaces Success.
	Do      func(ctx context.Context) (string, error)
	Success string
	// Refresh reloads the affected list once after success.
	Refresh func(ctx context.Context) error
}

type Result struct {
	State   State
	Message string
	Err     error
	// Close tells the caller to dismiss its input surface. KeepInput is the opposite:
	// the user's entries stay so they can fix and resubmit.
	Close      bool
	KeepInput  bool
	RefreshErr error
	// Notes are the outcome notifications, in order. The Pending note is not included.
	Notes []Notification
}

// Recorder keeps a log of executed actions.
type Recorder interface {
	AppendActivity(ctx context.Context, a model.Activity) error
}

type entry struct {
	state  State
	action Action
}

type Orchestrator struct {
	mu       sync.Mutex
	controls map[Control]*entry

	notifier Notifier
	recorder Recorder
	actor    func() string
	logger   *slog.Logger
}

type Option func(*Orchestrator)

func WithRecorder(r Recorder, actor func() string) Option {
	return func(o *Orchestrator) {
		o.recorder = r
		o.actor = actor
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an orchestrator. n may be nil when the caller reads Result.Notes instead.
func New(n Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		controls: map[Control]*entry{},
		notifier: n,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State(c Control) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.controls[c]; ok {
		return e.state
	}
	return Idle
}

// Start arms a control. It returns the new state: Confirming when the action has a
// prompt, Submitting otherwise.
func (o *Orchestrator) Start(c Control, a Action) (State, error) {
	if a.Do == nil {
		return Idle, fmt.Errorf("action %q has no Do func", a.Kind)
	}
	o.mu.Lock()
	if e, ok := o.controls[c]; ok && e.state != Idle {
		o.mu.Unlock()
		return e.state, ErrBusy
	}
	o.mu.Unlock()

	if a.Validate != nil {
		if err := a.Validate(); err != nil {
			o.emit(nil, Notification{Level: LevelError, Message: err.Error()})
			return Idle, err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.controls[c]; ok && e.state != Idle {
		return e.state, ErrBusy
	}
	next := Submitting
	if a.Confirm != nil {
		next = Confirming
	}
	o.controls[c] = &entry{state: next, action: a}
	return next, nil
}

// Decline cancels a pending confirmation without any remote call.
func (o *Orchestrator) Decline(c Control) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.controls[c]
	if !ok || e.state != Confirming {
		return ErrNotConfirmed
	}
	delete(o.controls, c)
	return nil
}

func (o *Orchestrator) Confirm(c Control) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.controls[c]
	if !ok || e.state != Confirming {
		return ErrNotConfirmed
	}
	e.state = Submitting
	return nil
}

// Pending returns the prompt of a control awaiting confirmation.
func (o *Orchestrator) Pending(c Control) (*Prompt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.controls[c]
	if !ok || e.state != Confirming {
		return nil, false
	}
	return e.action.Confirm, true
}

// Execute runs a Submitting control to completion and returns it to Idle.
//
// Success emits one success note and calls Refresh once. Failure emits one error note
// carrying the error's message, except for auth failures which the transport has
// already handled.
func (o *Orchestrator) Execute(ctx context.Context, c Control) Result {
	o.mu.Lock()
	e, ok := o.controls[c]
	if !ok || e.state != Submitting {
		o.mu.Unlock()
		return Result{State: Idle, Err: ErrNotReady, KeepInput: true}
	}
	a := e.action
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.controls, c)
		o.mu.Unlock()
	}()

	if a.Pending != "" {
		o.notify(Notification{Level: LevelInfo, Message: a.Pending})
	}

	msg, err := a.Do(ctx)
	if err != nil {
		o.setState(c, Failed)
		res := Result{State: Failed, Err: err, Message: err.Error(), KeepInput: true}
		if !api.IsUnauthorized(err) {
			o.emit(&res, Notification{Level: LevelError, Message: err.Error()})
		}
		o.logger.Warn("action failed", "kind", a.Kind, "target", a.Target, "err", err)
		o.record(ctx, a, false, err.Error())
		return res
	}

	o.setState(c, Succeeded)
	if msg == "" {
		msg = a.Success
	}
	res := Result{State: Succeeded, Message: msg, Close: true}
	if msg != "" {
		o.emit(&res, Notification{Level: LevelSuccess, Message: msg})
	}
	o.logger.Info("action succeeded", "kind", a.Kind, "target", a.Target)
	o.record(ctx, a, true, msg)

	if a.Refresh != nil {
		if rerr := a.Refresh(ctx); rerr != nil {
			res.RefreshErr = rerr
			if !api.IsUnauthorized(rerr) {
				o.emit(&res, Notification{Level: LevelError, Message: rerr.Error()})
			}
		}
	}
	return res
}

// Run drives an action end to end. confirm is consulted only for actions with a prompt;
// a false answer returns an Idle result with no remote call.
func (o *Orchestrator) Run(ctx context.Context, c Control, a Action, confirm func(Prompt) bool) (Result, error) {
	st, err := o.Start(c, a)
	if err != nil {
		res := Result{State: st, Err: err, Message: err.Error(), KeepInput: true}
		var ve *ValidationError
		if errors.As(err, &ve) {
			res.Notes = []Notification{{Level: LevelError, Message: err.Error()}}
		}
		return res, err
	}
	if st == Confirming {
		if confirm == nil || !confirm(*a.Confirm) {
			_ = o.Decline(c)
			return Result{State: Idle, KeepInput: true}, nil
		}
		if err := o.Confirm(c); err != nil {
			return Result{State: Idle, Err: err}, err
		}
	}
	res := o.Execute(ctx, c)
	return res, res.Err
}

func (o *Orchestrator) setState(c Control, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.controls[c]; ok {
		e.state = s
	}
}

func (o *Orchestrator) notify(n Notification) {
	if o.notifier != nil {
		o.notifier.Notify(n)
	}
}

func (o *Orchestrator) emit(res *Result, n Notification) {
	if res != nil {
		res.Notes = append(res.Notes, n)
	}
	o.notify(n)
}

func (o *Orchestrator) record(ctx context.Context, a Action, ok bool, msg string) {
	if o.recorder == nil || a.Kind == "" {
		return
	}
	actor := ""
	if o.actor != nil {
		actor = o.actor()
	}
	err := o.recorder.AppendActivity(context.WithoutCancel(ctx), model.Activity{
		Actor:   actor,
		Kind:    a.Kind,
		Target:  a.Target,
		OK:      ok,
		Message: msg,
	})
	if err != nil {
		o.logger.Warn("record activity", "kind", a.Kind, "err", err)
	}
}
