package repo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"shobdo-cli/internal/model"
)

// SessionWriter is what Auth needs from session.State.
type SessionWriter interface {
	Set(credential string, role model.Role, identity string) error
	Clear() error
}

type Auth struct {
	sender  Sender
	session SessionWriter
}

func NewAuth(sender Sender, sess SessionWriter) *Auth {
	return &Auth{sender: sender, session: sess}
}

// Login exchanges credentials for a token and stores it with the role and email.
func (a *Auth) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	email = strings.TrimSpace(email)
	var out model.LoginResponse
	if err := a.sender.Send(ctx, http.MethodPost, "/auth/login", model.Credentials{Email: email, Password: password}, &out); err != nil {
		return model.LoginResponse{}, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return model.LoginResponse{}, errors.New("login response did not include an access token")
	}
	if err := a.session.Set(out.AccessToken, out.Role, email); err != nil {
		return model.LoginResponse{}, err
	}
	return out, nil
}

func (a *Auth) Logout() error {
	return a.session.Clear()
}

func (a *Auth) CreateSubAdmin(ctx context.Context, email, password string) (model.MessageResponse, error) {
	var out model.MessageResponse
	err := a.sender.Send(ctx, http.MethodPost, "/auth/sub-admin", model.Credentials{Email: strings.TrimSpace(email), Password: password}, &out)
	return out, err
}

type SMS struct {
	sender Sender
}

func NewSMS(sender Sender) *SMS {
	return &SMS{sender: sender}
}

// Send broadcasts the drama's SMS to every contact. The server reports counts in Message.
func (s *SMS) Send(ctx context.Context, dramaID string) (model.MessageResponse, error) {
	var out model.MessageResponse
	err := s.sender.Send(ctx, http.MethodPost, "/sms/send/"+url.PathEscape(strings.TrimSpace(dramaID)), nil, &out)
	return out, err
}

// RunScheduled asks the server to send reminders for shows due in two days.
func (s *SMS) RunScheduled(ctx context.Context) (model.MessageResponse, error) {
	var out model.MessageResponse
	err := s.sender.Send(ctx, http.MethodGet, "/sms/scheduled", nil, &out)
	return out, err
}
