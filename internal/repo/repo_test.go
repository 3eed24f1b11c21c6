package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	body   any
}

// fakeSender records calls and answers from a per-path table.
type fakeSender struct {
	calls   []call
	replies map[string]string
	errs    map[string]error
}

func (f *fakeSender) Send(_ context.Context, method, path string, body any, out any) error {
	f.calls = append(f.calls, call{method: method, path: path, body: body})
	key := method + " " + path
	if err := f.errs[key]; err != nil {
		return err
	}
	if raw, ok := f.replies[key]; ok && out != nil {
		return json.Unmarshal([]byte(raw), out)
	}
	return nil
}

func TestRepository_ListReplacesSnapshot(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{
		"GET /dramas/": `[{"id":"d1","drama_name":"Opekkha","display_date":"2024-03-10"}]`,
	}}
	r := NewDramas(f)
	assert.Empty(t, r.Snapshot())

	got, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Opekkha", got[0].DramaName)
	assert.Equal(t, got, r.Snapshot())

	// Callers cannot mutate the held snapshot through the returned slice.
	got[0].DramaName = "changed"
	assert.Equal(t, "Opekkha", r.Snapshot()[0].DramaName)
}

func TestRepository_ListNullBodyIsEmpty(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{"GET /contacts/": `null`}}
	r := NewContacts(f)
	got, err := r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepository_FailedListKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{"GET /dramas/": `[{"id":"d1"}]`}}
	r := NewDramas(f)
	_, err := r.List(context.Background())
	require.NoError(t, err)

	boom := errors.New("boom")
	f.errs = map[string]error{"GET /dramas/": boom}
	_, err = r.List(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, r.Snapshot(), 1)
}

func TestRepository_MutationsAreSingleRequestsAndDoNotPatchSnapshot(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{
		"GET /contacts/":      `[{"id":"c1","name":"Rahim","mobile_number":"01700000000"}]`,
		"POST /contacts/":     `{"id":"c2","name":"Karim","mobile_number":"01800000000"}`,
		"PUT /contacts/c1":    `{"id":"c1","name":"Rahim Uddin","mobile_number":"01700000000"}`,
		"DELETE /contacts/c1": `{"message":"Contact deleted"}`,
	}}
	r := NewContacts(f)
	ctx := context.Background()
	_, err := r.List(ctx)
	require.NoError(t, err)

	created, err := r.Create(ctx, model.ContactInput{Name: "Karim", MobileNumber: "01800000000"})
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)

	updated, err := r.Update(ctx, "c1", model.ContactInput{Name: "Rahim Uddin", MobileNumber: "01700000000"})
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin", updated.Name)

	require.NoError(t, r.Delete(ctx, "c1"))

	require.Len(t, f.calls, 4)
	assert.Equal(t, call{method: "POST", path: "/contacts/", body: model.ContactInput{Name: "Karim", MobileNumber: "01800000000"}}, f.calls[1])
	assert.Equal(t, "PUT", f.calls[2].method)
	assert.Equal(t, "/contacts/c1", f.calls[2].path)
	assert.Equal(t, call{method: "DELETE", path: "/contacts/c1"}, f.calls[3])

	// Snapshot still reflects the last List only.
	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Rahim", snap[0].Name)
}

func TestRepository_EscapesIDs(t *testing.T) {
	t.Parallel()

	f := &fakeSender{}
	r := NewDramas(f)
	require.NoError(t, r.Delete(context.Background(), "a/b"))
	assert.Equal(t, "/dramas/a%2Fb", f.calls[0].path)
}

func TestAuth_LoginStoresSession(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{
		"POST /auth/login": `{"access_token":"tok-9","role":"sub-admin"}`,
	}}
	sess, err := session.Load(session.NewMemoryKV())
	require.NoError(t, err)

	a := NewAuth(f, sess)
	res, err := a.Login(context.Background(), "  sub@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSubAdmin, res.Role)
	assert.Equal(t, "tok-9", sess.Credential())
	assert.Equal(t, "sub@example.com", sess.Identity())
	assert.Equal(t, model.Credentials{Email: "sub@example.com", Password: "pw"}, f.calls[0].body)

	require.NoError(t, a.Logout())
	assert.False(t, sess.IsAuthenticated())
}

func TestAuth_LoginWithoutTokenFails(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{"POST /auth/login": `{}`}}
	sess, err := session.Load(session.NewMemoryKV())
	require.NoError(t, err)

	_, err = NewAuth(f, sess).Login(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.False(t, sess.IsAuthenticated())
}

func TestSMS_SendAndScheduled(t *testing.T) {
	t.Parallel()

	f := &fakeSender{replies: map[string]string{
		"POST /sms/send/d1":  `{"message":"SMS sent to 3/3 contacts"}`,
		"GET /sms/scheduled": `{"message":"Scheduled send complete. 2 SMS sent."}`,
	}}
	s := NewSMS(f)

	res, err := s.Send(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "SMS sent to 3/3 contacts", res.Message)

	res, err = s.RunScheduled(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res.Message, "2 SMS sent")
}
