package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/api"
	"shobdo-cli/internal/model"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

type fakeSession struct {
	mu    sync.Mutex
	token string
	role  model.Role
	email string
}

func (s *fakeSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *fakeSession) HasAdminRole() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.role == model.RoleAdmin
}

func (s *fakeSession) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ""
	}
	return s.email
}

func (s *fakeSession) Role() model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ""
	}
	return s.role
}

func (s *fakeSession) set(token string, role model.Role, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.role, s.email = token, role, email
}

type fakeAuth struct {
	sess      *fakeSession
	logins    int
	subAdmins []string
}

func (a *fakeAuth) Login(_ context.Context, email, password string) (model.LoginResponse, error) {
	a.logins++
	role := model.RoleAdmin
	if email == "sub@example.com" {
		role = model.RoleSubAdmin
	}
	if password != "secret" {
		return model.LoginResponse{}, &api.AuthError{Path: "/auth/login", Message: "Invalid credentials"}
	}
	a.sess.set("tok-"+email, role, email)
	return model.LoginResponse{AccessToken: "tok-" + email, Role: role}, nil
}

func (a *fakeAuth) Logout() error {
	a.sess.set("", "", "")
	return nil
}

func (a *fakeAuth) CreateSubAdmin(_ context.Context, email, _ string) (model.MessageResponse, error) {
	a.subAdmins = append(a.subAdmins, email)
	return model.MessageResponse{Message: "created"}, nil
}

// fakeRepo is an in-memory repository with the same snapshot rules as repo.Repository.
type fakeRepo[T any, P any] struct {
	mu    sync.Mutex
	items []T
	snap  []T
	calls map[string]int
	errs  map[string]error
	next  int
	build func(id string, p P) T
	idOf  func(T) string
}

func (r *fakeRepo[T, P]) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeRepo[T, P]) hit(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[op]++
	return r.errs[op]
}

func (r *fakeRepo[T, P]) List(context.Context) ([]T, error) {
	if err := r.hit("list"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = append([]T{}, r.items...)
	return append([]T{}, r.snap...), nil
}

func (r *fakeRepo[T, P]) Create(_ context.Context, p P) (T, error) {
	var zero T
	if err := r.hit("create"); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	v := r.build(fmt.Sprintf("new-%d", r.next), p)
	r.items = append(r.items, v)
	return v, nil
}

func (r *fakeRepo[T, P]) Update(_ context.Context, id string, p P) (T, error) {
	var zero T
	if err := r.hit("update"); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.items {
		if r.idOf(v) == id {
			r.items[i] = r.build(id, p)
			return r.items[i], nil
		}
	}
	return zero, &api.APIError{Status: 404, Message: "Not found"}
}

func (r *fakeRepo[T, P]) Delete(_ context.Context, id string) error {
	if err := r.hit("delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.items {
		if r.idOf(v) == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return &api.APIError{Status: 404, Message: "Not found"}
}

func (r *fakeRepo[T, P]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T{}, r.snap...)
}

type fakeSMS struct {
	sent []string
}

func (s *fakeSMS) Send(_ context.Context, id string) (model.MessageResponse, error) {
	s.sent = append(s.sent, id)
	return model.MessageResponse{Message: "SMS sent to 2 contacts"}, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	acts []model.Activity
}

func (r *fakeRecorder) AppendActivity(_ context.Context, a model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acts = append(r.acts, a)
	return nil
}

func (r *fakeRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.acts))
	for _, a := range r.acts {
		out = append(out, a.Kind)
	}
	return out
}

type fixture struct {
	sess     *fakeSession
	auth     *fakeAuth
	dramas   *fakeRepo[model.Drama, model.DramaInput]
	contacts *fakeRepo[model.Contact, model.ContactInput]
	sms      *fakeSMS
	rec      *fakeRecorder
}

func newFixture() *fixture {
	sess := &fakeSession{}
	return &fixture{
		sess: sess,
		auth: &fakeAuth{sess: sess},
		dramas: &fakeRepo[model.Drama, model.DramaInput]{
			items: []model.Drama{
				{ID: "d1", DramaName: "Opekkha", DisplayDate: "2024-03-12", CustomSMS: "Tonight at 7"},
				{ID: "d2", DramaName: "Bishad Sindhu", DisplayDate: "2024-03-01", CustomSMS: "Thank you"},
			},
			build: func(id string, p model.DramaInput) model.Drama {
				return model.Drama{ID: id, DramaName: p.DramaName, DisplayDate: p.DisplayDate, CustomSMS: p.CustomSMS}
			},
			idOf: func(d model.Drama) string { return d.ID },
		},
		contacts: &fakeRepo[model.Contact, model.ContactInput]{
			items: []model.Contact{
				{ID: "c1", Name: "Rahim", MobileNumber: "01700000000"},
				{ID: "c2", Name: "Karim", MobileNumber: "01800000000"},
			},
			build: func(id string, p model.ContactInput) model.Contact {
				return model.Contact{ID: id, Name: p.Name, MobileNumber: p.MobileNumber}
			},
			idOf: func(c model.Contact) string { return c.ID },
		},
		sms: &fakeSMS{},
		rec: &fakeRecorder{},
	}
}

func (f *fixture) model(t *testing.T) appModel {
	t.Helper()
	m := newAppModel(context.Background(), Deps{
		Session:  f.sess,
		Auth:     f.auth,
		Dramas:   f.dramas,
		Contacts: f.contacts,
		SMS:      f.sms,
		Recorder: f.rec,
	})
	m.now = func() time.Time { return testNow }
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// signedIn returns a model past the sign-in screen with the overview loaded.
func (f *fixture) signedIn(t *testing.T, role model.Role) appModel {
	t.Helper()
	email := "admin@example.com"
	if role == model.RoleSubAdmin {
		email = "sub@example.com"
	}
	f.sess.set("tok", role, email)
	m := f.model(t)
	m = drain(t, m, m.load())
	if !m.loaded {
		t.Fatalf("expected overview to load")
	}
	return m
}

// send delivers msg and runs every command it produces.
func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	mm, cmd := m.Update(msg)
	return drain(t, mm.(appModel), cmd)
}

// drain runs cmd (and batches) synchronously. Ticks are dropped so timers never
// block the test.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, toastTickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			mm, next := m.Update(msg)
			m = mm.(appModel)
			queue = append(queue, next)
		}
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, key(k))
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func toastTexts(m appModel) []string {
	out := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		out = append(out, string(t.level)+": "+t.text)
	}
	return out
}

func lastToast(t *testing.T, m appModel) toast {
	t.Helper()
	if len(m.toasts) == 0 {
		t.Fatalf("expected a toast")
	}
	return m.toasts[len(m.toasts)-1]
}

var _ action.Recorder = (*fakeRecorder)(nil)
