package action

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"
)

// ValidationError is a client-side check that failed before any request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func required(field, label, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, "%s is required", label)
	}
	return nil
}

// ValidateDrama trims in place and checks a drama form.
func ValidateDrama(in *model.DramaInput) error {
	in.DramaName = strings.TrimSpace(in.DramaName)
	in.DisplayDate = strings.TrimSpace(in.DisplayDate)
	in.CustomSMS = strings.TrimSpace(in.CustomSMS)

	if err := required("drama_name", "Drama name", in.DramaName); err != nil {
		return err
	}
	if err := required("display_date", "Display date", in.DisplayDate); err != nil {
		return err
	}
	if _, ok := view.ParseDate(in.DisplayDate, time.Local); !ok {
		return invalid("display_date", "Display date must be YYYY-MM-DD")
	}
	if err := required("custom_sms", "SMS message", in.CustomSMS); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(in.CustomSMS); n > view.SMSMaxChars {
		return invalid("custom_sms", "SMS message is %d characters; the limit is %d", n, view.SMSMaxChars)
	}
	return nil
}

func ValidateContact(in *model.ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	if err := required("name", "Name", in.Name); err != nil {
		return err
	}
	return required("mobile_number", "Mobile number", in.MobileNumber)
}

// ValidateCredentials checks a login or sub-admin form. The email is trimmed; the
// password is taken as typed.
func ValidateCredentials(in *model.Credentials) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := required("email", "Email", in.Email); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return invalid("email", "Email address is not valid")
	}
	if in.Password == "" {
		return invalid("password", "Password is required")
	}
	return nil
}
