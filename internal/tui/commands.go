package tui

import (
	"context"
	"errors"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) load() tea.Cmd {
	l := m.loader
	l.Now = m.now
	ctx := m.ctx
	return func() tea.Msg {
		ov, err := l.Load(ctx)
		return overviewLoadedMsg{overview: ov, err: err}
	}
}

func loginCmd(ctx context.Context, auth authService, c model.Credentials) tea.Cmd {
	return func() tea.Msg {
		_, err := auth.Login(ctx, c.Email, c.Password)
		return loginDoneMsg{err: err}
	}
}

func executeCmd(ctx context.Context, orch *action.Orchestrator, c action.Control, kind string) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{control: c, kind: kind, res: orch.Execute(ctx, c)}
	}
}

// startAction arms a control. Destructive actions open the confirm modal; the rest
// go straight to submission. A busy control is ignored.
func (m appModel) startAction(c action.Control, a action.Action) (appModel, tea.Cmd) {
	st, err := m.orch.Start(c, a)
	if err != nil {
		var ve *action.ValidationError
		if errors.As(err, &ve) {
			m.pushToast(action.LevelError, ve.Error())
		} else if !errors.Is(err, action.ErrBusy) {
			m.pushToast(action.LevelError, err.Error())
		}
		return m, nil
	}
	if st == action.Confirming {
		m.confirm = &pendingConfirm{control: c, action: a, focus: confirmFocusCancel}
		m.modal = modalConfirm
		return m, nil
	}
	return m.submit(c, a)
}

func (m appModel) submit(c action.Control, a action.Action) (appModel, tea.Cmd) {
	if a.Pending != "" {
		m.pushToast(action.LevelInfo, a.Pending)
	}
	m.inflight++
	return m, tea.Batch(m.spinner.Tick, executeCmd(m.ctx, m.orch, c, a.Kind))
}

func (m appModel) record(kind, target string, err error) {
	if m.recorder == nil {
		return
	}
	a := model.Activity{Actor: m.session.Identity(), Kind: kind, Target: target, OK: err == nil}
	if err != nil {
		a.Message = err.Error()
	}
	if rerr := m.recorder.AppendActivity(m.ctx, a); rerr != nil {
		m.logger.Warn("record activity", "kind", kind, "err", rerr)
	}
}
