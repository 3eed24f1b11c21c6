package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub-admin"
)

// Drama is a scheduled show. DisplayDate is a calendar date (YYYY-MM-DD).
type Drama struct {
	ID          string `json:"id"`
	DramaName   string `json:"drama_name"`
	DisplayDate string `json:"display_date"`
	CustomSMS   string `json:"custom_sms"`
}

type DramaInput struct {
	DramaName   string `json:"drama_name"`
	DisplayDate string `json:"display_date"`
	CustomSMS   string `json:"custom_sms"`
}

type Contact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
}

type ContactInput struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
}

// MessageResponse is the `{message}` body returned by send/delete style endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

type Activity struct {
	ID      int64     `json:"id"`
	TS      time.Time `json:"ts"`
	Actor   string    `json:"actor"`
	Kind    string    `json:"kind"`
	Target  string    `json:"target,omitempty"`
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
}
