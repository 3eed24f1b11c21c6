package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/scheduler"
	"shobdo-cli/internal/session"
)

// fakeAPI is an in-memory stand-in for the shobdo API.
type fakeAPI struct {
	mu       sync.Mutex
	dramas   []model.Drama
	contacts []model.Contact
	tokens   map[string]model.Role
	expired  bool
	posts    int
	requests int
	smsSent  []string
	nextID   int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{tokens: map[string]model.Role{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++
	if r.Method == http.MethodPost {
		f.posts++
	}
	body, _ := io.ReadAll(r.Body)

	if r.URL.Path == "/auth/login" {
		var c model.Credentials
		_ = json.Unmarshal(body, &c)
		role := model.Role("")
		switch {
		case c.Email == "admin@example.com" && c.Password == "secret":
			role = model.RoleAdmin
		case c.Email == "sub@example.com" && c.Password == "secret":
			role = model.RoleSubAdmin
		default:
			writeJSON(w, 401, map[string]any{"detail": "Invalid credentials"})
			return
		}
		tok := "tok-" + string(role)
		f.tokens[tok] = role
		writeJSON(w, 200, model.LoginResponse{AccessToken: tok, Role: role})
		return
	}

	role, ok := f.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok || f.expired {
		writeJSON(w, 401, map[string]any{"detail": "Could not validate credentials"})
		return
	}
	admin := role == model.RoleAdmin

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case parts[0] == "dramas" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, 200, f.dramas)
	case parts[0] == "dramas" && len(parts) == 1 && r.Method == http.MethodPost:
		if !admin {
			writeJSON(w, 403, map[string]any{"detail": "Admin only"})
			return
		}
		var in model.DramaInput
		_ = json.Unmarshal(body, &in)
		d := model.Drama{ID: f.id(), DramaName: in.DramaName, DisplayDate: in.DisplayDate, CustomSMS: in.CustomSMS}
		f.dramas = append(f.dramas, d)
		writeJSON(w, 200, d)
	case parts[0] == "dramas" && len(parts) == 2 && r.Method == http.MethodPut:
		var in model.DramaInput
		_ = json.Unmarshal(body, &in)
		for i := range f.dramas {
			if f.dramas[i].ID == parts[1] {
				f.dramas[i] = model.Drama{ID: parts[1], DramaName: in.DramaName, DisplayDate: in.DisplayDate, CustomSMS: in.CustomSMS}
				writeJSON(w, 200, f.dramas[i])
				return
			}
		}
		writeJSON(w, 404, map[string]any{"detail": "Drama not found"})
	case parts[0] == "dramas" && len(parts) == 2 && r.Method == http.MethodDelete:
		out := f.dramas[:0]
		for _, d := range f.dramas {
			if d.ID != parts[1] {
				out = append(out, d)
			}
		}
		f.dramas = out
		writeJSON(w, 200, map[string]any{"message": "Drama deleted"})
	case parts[0] == "contacts" && !admin:
		writeJSON(w, 403, map[string]any{"detail": "Admin only"})
	case parts[0] == "contacts" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, 200, f.contacts)
	case parts[0] == "contacts" && len(parts) == 1 && r.Method == http.MethodPost:
		var in model.ContactInput
		_ = json.Unmarshal(body, &in)
		c := model.Contact{ID: f.id(), Name: in.Name, MobileNumber: in.MobileNumber}
		f.contacts = append(f.contacts, c)
		writeJSON(w, 200, c)
	case parts[0] == "contacts" && len(parts) == 2 && r.Method == http.MethodDelete:
		out := f.contacts[:0]
		for _, c := range f.contacts {
			if c.ID != parts[1] {
				out = append(out, c)
			}
		}
		f.contacts = out
		writeJSON(w, 200, map[string]any{"message": "Contact deleted"})
	case parts[0] == "sms" && len(parts) == 3 && parts[1] == "send":
		f.smsSent = append(f.smsSent, parts[2])
		writeJSON(w, 200, map[string]any{"message": fmt.Sprintf("SMS sent to %d contacts", len(f.contacts))})
	case parts[0] == "sms" && len(parts) == 2 && parts[1] == "scheduled":
		writeJSON(w, 200, map[string]any{"message": "Scheduled SMS processed"})
	case parts[0] == "auth" && len(parts) == 2 && parts[1] == "sub-admin":
		writeJSON(w, 200, map[string]any{"message": "Sub-admin created"})
	default:
		writeJSON(w, 404, map[string]any{"detail": "Not Found"})
	}
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runCLIWithInput(t, "", args)
}

func runCLIWithInput(t *testing.T, stdin string, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

type env struct {
	t   *testing.T
	dir string
	api *fakeAPI
	url string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	f, srv := newFakeAPI(t)
	return &env{t: t, dir: t.TempDir(), api: f, url: srv.URL}
}

func (e *env) args(args ...string) []string {
	return append([]string{"--dir", e.dir, "--api-url", e.url, "--log-level", "error"}, args...)
}

func (e *env) mustRun(args ...string) map[string]any {
	e.t.Helper()
	stdout, stderr, err := runCLI(e.t, e.args(args...))
	if err != nil {
		e.t.Fatalf("command failed: shobdo %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var out map[string]any
	if err := json.Unmarshal(stdout, &out); err != nil {
		e.t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, string(stdout))
	}
	if _, ok := out["data"]; !ok {
		e.t.Fatalf("expected JSON envelope to contain data key; got: %v", out)
	}
	return out
}

func (e *env) mustFail(args ...string) string {
	e.t.Helper()
	stdout, stderr, err := runCLI(e.t, e.args(args...))
	if err == nil {
		e.t.Fatalf("expected shobdo %v to fail; stdout:\n%s", args, string(stdout))
	}
	return string(stderr)
}

func (e *env) login(email string) {
	e.t.Helper()
	e.mustRun("login", "--email", email, "--password", "secret")
}

func (e *env) firstDramaID() string {
	e.t.Helper()
	e.api.mu.Lock()
	defer e.api.mu.Unlock()
	if len(e.api.dramas) == 0 {
		e.t.Fatalf("no dramas on the fake API")
	}
	return e.api.dramas[0].ID
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	xs, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("expected data list, got %#v", env["data"])
	}
	return xs
}

func TestLoginWhoamiLogout(t *testing.T) {
	e := newEnv(t)

	who := dataMap(t, e.mustRun("whoami"))
	if who["authenticated"] != false {
		t.Fatalf("expected signed out initially: %#v", who)
	}

	got := dataMap(t, e.mustRun("login", "--email", " admin@example.com ", "--password", "secret"))
	if got["role"] != "admin" || got["email"] != "admin@example.com" {
		t.Fatalf("unexpected login data: %#v", got)
	}

	who = dataMap(t, e.mustRun("whoami"))
	if who["authenticated"] != true || who["role"] != "admin" || who["admin"] != true {
		t.Fatalf("unexpected whoami: %#v", who)
	}

	e.mustRun("logout")
	who = dataMap(t, e.mustRun("whoami"))
	if who["authenticated"] != false || who["role"] != "" {
		t.Fatalf("expected signed out: %#v", who)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newEnv(t)

	stderr := e.mustFail("login", "--email", "admin@example.com", "--password", "wrong")
	if strings.TrimSpace(stderr) != "Invalid credentials" {
		t.Fatalf("expected server detail once, got %q", stderr)
	}
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	e := newEnv(t)

	_, stderr, err := runCLIWithInput(t, "secret\n", e.args("login", "--email", "admin@example.com"))
	if err != nil {
		t.Fatalf("login: %v\n%s", err, stderr)
	}
	who := dataMap(t, e.mustRun("whoami"))
	if who["authenticated"] != true {
		t.Fatalf("expected signed in: %#v", who)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	e := newEnv(t)

	stderr := e.mustFail("dramas", "list")
	if !strings.Contains(stderr, "not signed in") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestDramasLifecycle(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")

	today := time.Now().Format("2006-01-02")
	created := dataMap(t, e.mustRun("dramas", "create", "--name", "Raktakarabi", "--date", today, "--sms", "Tagore tonight"))
	if created["message"] != "Drama added successfully!" {
		t.Fatalf("unexpected create output: %#v", created)
	}
	e.mustRun("dramas", "create", "--name", "Hamlet", "--date", "2001-01-01", "--sms", "Old show")

	all := e.mustRun("dramas", "list")
	if n := len(dataList(t, all)); n != 2 {
		t.Fatalf("expected 2 dramas, got %d", n)
	}

	found := e.mustRun("dramas", "list", "--search", "TAGORE")
	rows := dataList(t, found)
	if len(rows) != 1 {
		t.Fatalf("expected 1 match, got %d", len(rows))
	}
	row := rows[0].(map[string]any)
	if row["status"] != "today" || row["badge"] != "Today" {
		t.Fatalf("unexpected row: %#v", row)
	}
	id := row["drama"].(map[string]any)["id"].(string)

	up := dataList(t, e.mustRun("dramas", "upcoming"))
	if len(up) != 1 {
		t.Fatalf("expected 1 upcoming, got %d", len(up))
	}

	e.mustRun("dramas", "update", id, "--sms", "Tagore tonight at 7")
	e.api.mu.Lock()
	if e.api.dramas[0].CustomSMS != "Tagore tonight at 7" || e.api.dramas[0].DramaName != "Raktakarabi" {
		t.Fatalf("update should keep unset fields: %#v", e.api.dramas[0])
	}
	e.api.mu.Unlock()

	// Declined confirmation makes no call.
	stdout, _, err := runCLIWithInput(t, "n\n", e.args("dramas", "delete", id))
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if !strings.Contains(string(stdout), `"cancelled":true`) {
		t.Fatalf("expected cancelled output, got %s", stdout)
	}
	if n := len(dataList(t, e.mustRun("dramas", "list"))); n != 2 {
		t.Fatalf("declined delete removed something: %d left", n)
	}

	e.mustRun("dramas", "delete", id, "--yes")
	if n := len(dataList(t, e.mustRun("dramas", "list"))); n != 1 {
		t.Fatalf("expected 1 drama after delete, got %d", n)
	}

	empty := e.mustRun("dramas", "list", "--search", "nothing-matches")
	meta := empty["meta"].(map[string]any)
	if meta["empty"].(map[string]any)["title"] != "No results found" {
		t.Fatalf("unexpected empty meta: %#v", meta)
	}
}

func TestDramasCreate_ValidationSkipsNetwork(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")

	e.api.mu.Lock()
	before := e.api.posts
	e.api.mu.Unlock()

	stderr := e.mustFail("dramas", "create", "--name", "X", "--date", "10/03/2024", "--sms", "hi")
	if strings.TrimSpace(stderr) != "Display date must be YYYY-MM-DD" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
	e.api.mu.Lock()
	defer e.api.mu.Unlock()
	if e.api.posts != before {
		t.Fatalf("validation failure reached the API")
	}
}

func TestSubAdminPermissions(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")
	e.mustRun("dramas", "create", "--name", "Hamlet", "--date", "2030-01-01", "--sms", "hi")
	id := e.firstDramaID()
	e.mustRun("logout")

	e.login("sub@example.com")
	for _, args := range [][]string{
		{"dramas", "create", "--name", "X", "--date", "2030-01-01", "--sms", "x"},
		{"dramas", "delete", id, "--yes"},
		{"contacts", "list"},
		{"sms", "send", id, "--yes"},
		{"subadmins", "create", "--email", "x@example.com", "--password", "p"},
	} {
		stderr := e.mustFail(args...)
		if !strings.Contains(stderr, "admin role required") {
			t.Fatalf("%v: expected permission error, got %q", args, stderr)
		}
	}

	// Sub-admins may list and edit dramas.
	e.mustRun("dramas", "list")
	e.mustRun("dramas", "update", id, "--name", "Hamlet (revival)")

	ov := dataMap(t, e.mustRun("overview"))
	if ov["showContacts"] != false {
		t.Fatalf("sub-admin overview should hide contacts: %#v", ov)
	}
}

func TestExpiredSessionClearsAndReportsOnce(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")

	e.api.mu.Lock()
	e.api.expired = true
	e.api.mu.Unlock()

	stderr := e.mustFail("dramas", "list")
	if strings.Count(stderr, "session expired") != 1 || strings.Count(strings.TrimSpace(stderr), "\n") != 0 {
		t.Fatalf("expected exactly one session-expired line, got %q", stderr)
	}

	who := dataMap(t, e.mustRun("whoami"))
	if who["authenticated"] != false || who["email"] != "" {
		t.Fatalf("session should be cleared after 401: %#v", who)
	}
}

func TestContactsAndSMS(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")

	e.mustRun("contacts", "create", "--name", "Rahim Uddin", "--mobile", "01712345678")
	e.mustRun("contacts", "create", "--name", "Karim", "--mobile", "01812345678")
	list := e.mustRun("contacts", "list", "--search", "0181")
	if n := len(dataList(t, list)); n != 1 {
		t.Fatalf("expected 1 contact match, got %d", n)
	}
	if list["meta"].(map[string]any)["label"] != "2 contacts" {
		t.Fatalf("unexpected meta: %#v", list["meta"])
	}

	e.mustRun("dramas", "create", "--name", "Hamlet", "--date", "2030-01-01", "--sms", "hi")
	id := e.firstDramaID()

	stdout, stderr, err := runCLI(t, e.args("sms", "send", id, "--yes"))
	if err != nil {
		t.Fatalf("sms send: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "SMS sent to 2 contacts") {
		t.Fatalf("expected server message, got %s", stdout)
	}
	if !strings.Contains(string(stderr), "Sending SMS") {
		t.Fatalf("expected pending notice on stderr, got %q", stderr)
	}

	sched := dataMap(t, e.mustRun("sms", "scheduled"))
	if sched["message"] != "Scheduled SMS processed" {
		t.Fatalf("unexpected scheduled output: %#v", sched)
	}

	acts := dataList(t, e.mustRun("activity", "--limit", "3"))
	if len(acts) != 3 {
		t.Fatalf("expected 3 activity rows, got %d", len(acts))
	}
	if acts[0].(map[string]any)["kind"] != "sms.scheduled" || acts[1].(map[string]any)["kind"] != "sms.send" {
		t.Fatalf("unexpected activity order: %#v", acts)
	}

	e.api.mu.Lock()
	c := e.api.contacts[0]
	e.api.mu.Unlock()
	e.mustRun("contacts", "delete", c.ID, "--yes")
	if n := len(dataList(t, e.mustRun("contacts", "list"))); n != 1 {
		t.Fatalf("expected 1 contact left, got %d", n)
	}
}

func TestOverviewTable(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")
	e.mustRun("dramas", "create", "--name", "Hamlet", "--date", "2030-01-01", "--sms", "hi")

	stdout, stderr, err := runCLI(t, e.args("--format", "table", "overview"))
	if err != nil {
		t.Fatalf("overview: %v\n%s", err, stderr)
	}
	for _, want := range []string{"Total dramas", "Contacts", "1 Jan 2030", "Hamlet"} {
		if !strings.Contains(string(stdout), want) {
			t.Fatalf("expected %q in:\n%s", want, stdout)
		}
	}
}

func TestDocs(t *testing.T) {
	e := newEnv(t)

	topics := dataList(t, e.mustRun("docs"))
	if len(topics) != 5 {
		t.Fatalf("expected 5 topics, got %v", topics)
	}
	if first := topics[0].(map[string]any); first["name"] != "contacts" || first["title"] != "Contacts" {
		t.Fatalf("unexpected first topic: %v", first)
	}
	stdout, _, err := runCLI(t, e.args("docs", "sms", "--raw"))
	if err != nil || !strings.HasPrefix(string(stdout), "# SMS") {
		t.Fatalf("raw docs: err=%v out=%q", err, stdout)
	}
	stdout, _, err = runCLI(t, e.args("docs", "keys", "--render"))
	if err != nil || !strings.Contains(string(stdout), "moves between fields") {
		t.Fatalf("rendered docs: err=%v out=%q", err, stdout)
	}
	e.mustFail("docs", "nope")
}

func doctorLevels(t *testing.T, env map[string]any) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, x := range dataList(t, env) {
		c := x.(map[string]any)
		out[c["name"].(string)] = c["level"].(string)
	}
	return out
}

func TestDoctor(t *testing.T) {
	e := newEnv(t)

	got := doctorLevels(t, e.mustRun("doctor"))
	if got["store"] != "ok" || got["api"] != "ok" || got["session"] != "warn" {
		t.Fatalf("unexpected signed-out report: %v", got)
	}

	e.login("admin@example.com")
	got = doctorLevels(t, e.mustRun("doctor"))
	if got["session"] != "ok" {
		t.Fatalf("expected session ok: %v", got)
	}

	e.api.mu.Lock()
	e.api.expired = true
	e.api.mu.Unlock()
	stdout, stderr, err := runCLI(t, e.args("doctor", "--fail"))
	if err == nil {
		t.Fatalf("expected --fail to exit non-zero; stdout:\n%s", stdout)
	}
	if strings.Contains(string(stderr), "session expired; run") {
		t.Fatalf("doctor must not print the session notice: %q", stderr)
	}
	if !strings.Contains(string(stdout), "session expired; sign in again") {
		t.Fatalf("expected session error in report:\n%s", stdout)
	}
}

func TestDestructiveCommands_DeclineSendsNothing(t *testing.T) {
	e := newEnv(t)
	e.login("admin@example.com")
	e.mustRun("dramas", "create", "--name", "Hamlet", "--date", "2030-01-01", "--sms", "hi")
	e.mustRun("contacts", "create", "--name", "Karim", "--mobile", "01812345678")
	id := e.firstDramaID()
	e.api.mu.Lock()
	contactID := e.api.contacts[0].ID
	e.api.mu.Unlock()

	for _, args := range [][]string{
		{"dramas", "delete", id},
		{"sms", "send", id},
		{"contacts", "delete", contactID},
	} {
		e.api.mu.Lock()
		before := e.api.requests
		e.api.mu.Unlock()

		stdout, stderr, err := runCLIWithInput(t, "n\n", e.args(args...))
		if err != nil {
			t.Fatalf("%v: %v\n%s", args, err, stderr)
		}
		if !strings.Contains(string(stdout), `"cancelled":true`) {
			t.Fatalf("%v: expected cancelled output, got %s", args, stdout)
		}
		if !strings.Contains(string(stderr), "[y/N]") {
			t.Fatalf("%v: expected a prompt, got %q", args, stderr)
		}

		e.api.mu.Lock()
		after := e.api.requests
		e.api.mu.Unlock()
		if after != before {
			t.Fatalf("%v: declined command made %d requests", args, after-before)
		}
	}

	e.api.mu.Lock()
	defer e.api.mu.Unlock()
	if len(e.api.dramas) != 1 || len(e.api.contacts) != 1 || len(e.api.smsSent) != 0 {
		t.Fatalf("declined commands changed state: %d dramas, %d contacts, %d sms", len(e.api.dramas), len(e.api.contacts), len(e.api.smsSent))
	}
}

func TestSMSScheduled_HelpNamesTwoDayWindow(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"sms", "--help"})
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(string(stdout), "two days from now") {
		t.Fatalf("scheduled help should name the two-day window:\n%s", stdout)
	}
	if strings.Contains(string(stdout), "today's shows") {
		t.Fatalf("scheduled help still mentions today's shows:\n%s", stdout)
	}
}

func TestNewScheduler_UsesRequestTimeout(t *testing.T) {
	app := &App{Timeout: 7 * time.Second}
	svc := &services{session: &session.State{}}

	sch := newScheduler(app, svc)
	if got := sch.Timeout(); got != 7*time.Second {
		t.Fatalf("expected the --timeout value, got %s", got)
	}

	// Extra options must not drop the timeout.
	sch = newScheduler(app, svc, scheduler.WithRunHook(func(scheduler.Run) {}))
	if got := sch.Timeout(); got != 7*time.Second {
		t.Fatalf("expected the --timeout value with a run hook, got %s", got)
	}
}
