package action

import (
	"context"
	"fmt"

	"shobdo-cli/internal/model"
)

// Store is the slice of an entity repository the catalog needs.
type Store[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id string, payload P) (T, error)
	Delete(ctx context.Context, id string) error
}

type SMSSender interface {
	Send(ctx context.Context, dramaID string) (model.MessageResponse, error)
}

type SubAdminCreator interface {
	CreateSubAdmin(ctx context.Context, email, password string) (model.MessageResponse, error)
}

func refresh[T any, P any](s Store[T, P]) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.List(ctx)
		return err
	}
}

// Controls for form submits; row controls are keyed by entity ID.
const (
	ControlDramaCreate   Control = "drama.create"
	ControlContactCreate Control = "contact.create"
	ControlSubAdmin      Control = "subadmin.create"
)

func DramaRowControl(kind, id string) Control   { return Control("drama." + kind + ":" + id) }
func ContactRowControl(kind, id string) Control { return Control("contact." + kind + ":" + id) }

func CreateDrama(s Store[model.Drama, model.DramaInput], in model.DramaInput) Action {
	return Action{
		Kind:     "drama.create",
		Target:   in.DramaName,
		Validate: func() error { return ValidateDrama(&in) },
		Do: func(ctx context.Context) (string, error) {
			_, err := s.Create(ctx, in)
			return "", err
		},
		Success: "Drama added successfully!",
		Refresh: refresh(s),
	}
}

func UpdateDrama(s Store[model.Drama, model.DramaInput], id string, in model.DramaInput) Action {
	return Action{
		Kind:     "drama.update",
		Target:   id,
		Validate: func() error { return ValidateDrama(&in) },
		Do: func(ctx context.Context) (string, error) {
			_, err := s.Update(ctx, id, in)
			return "", err
		},
		Success: "Drama updated!",
		Refresh: refresh(s),
	}
}

func DeleteDrama(s Store[model.Drama, model.DramaInput], d model.Drama) Action {
	return Action{
		Kind:   "drama.delete",
		Target: d.ID,
		Confirm: &Prompt{
			Title:   "Delete Drama",
			Message: fmt.Sprintf("Delete %q? This will also remove all SMS logs for this drama.", d.DramaName),
			Danger:  true,
		},
		Do: func(ctx context.Context) (string, error) {
			return "", s.Delete(ctx, d.ID)
		},
		Success: "Drama deleted.",
		Refresh: refresh(s),
	}
}

// SendSMS notifies every contact about a drama. The list is not refreshed.
func SendSMS(s SMSSender, d model.Drama) Action {
	return Action{
		Kind:   "sms.send",
		Target: d.ID,
		Confirm: &Prompt{
			Title:   "Send SMS",
			Message: fmt.Sprintf("Send SMS to all contacts for %q? This action cannot be undone.", d.DramaName),
		},
		Pending: "Sending SMS — please wait...",
		Do: func(ctx context.Context) (string, error) {
			res, err := s.Send(ctx, d.ID)
			return res.Message, err
		},
		Success: "SMS sent successfully!",
	}
}

func CreateContact(s Store[model.Contact, model.ContactInput], in model.ContactInput) Action {
	return Action{
		Kind:     "contact.create",
		Target:   in.Name,
		Validate: func() error { return ValidateContact(&in) },
		Do: func(ctx context.Context) (string, error) {
			_, err := s.Create(ctx, in)
			return "", err
		},
		Success: "Contact added!",
		Refresh: refresh(s),
	}
}

func UpdateContact(s Store[model.Contact, model.ContactInput], id string, in model.ContactInput) Action {
	return Action{
		Kind:     "contact.update",
		Target:   id,
		Validate: func() error { return ValidateContact(&in) },
		Do: func(ctx context.Context) (string, error) {
			_, err := s.Update(ctx, id, in)
			return "", err
		},
		Success: "Contact updated!",
		Refresh: refresh(s),
	}
}

func DeleteContact(s Store[model.Contact, model.ContactInput], c model.Contact) Action {
	return Action{
		Kind:   "contact.delete",
		Target: c.ID,
		Confirm: &Prompt{
			Title:   "Remove Contact",
			Message: fmt.Sprintf("Remove %q from contacts? They will no longer receive SMS notifications.", c.Name),
			Danger:  true,
		},
		Do: func(ctx context.Context) (string, error) {
			return "", s.Delete(ctx, c.ID)
		},
		Success: "Contact removed.",
		Refresh: refresh(s),
	}
}

func CreateSubAdmin(s SubAdminCreator, in model.Credentials) Action {
	return Action{
		Kind:     "subadmin.create",
		Target:   in.Email,
		Validate: func() error { return ValidateCredentials(&in) },
		Do: func(ctx context.Context) (string, error) {
			_, err := s.CreateSubAdmin(ctx, in.Email, in.Password)
			return "", err
		},
		Success: "Sub-admin created successfully!",
	}
}
