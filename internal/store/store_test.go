package store

import (
	"context"
	"testing"
	"time"

	"shobdo-cli/internal/model"
)

func TestKV_SetGetDelete(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}

	// Missing key => empty value, no error.
	v, err := s.Get("st_token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty value for missing key; got %q", v)
	}

	if err := s.SetMany(map[string]string{"st_token": "tok", "st_role": "admin"}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	if v, _ := s.Get("st_token"); v != "tok" {
		t.Fatalf("expected st_token=tok; got %q", v)
	}
	if v, _ := s.Get("st_role"); v != "admin" {
		t.Fatalf("expected st_role=admin; got %q", v)
	}

	if err := s.Delete("st_token", "st_role"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v, _ := s.Get("st_token"); v != "" {
		t.Fatalf("expected st_token cleared; got %q", v)
	}
}

func TestActivity_NewestFirstAndLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	for i, kind := range []string{"drama.create", "drama.delete", "sms.send"} {
		err := s.AppendActivity(ctx, model.Activity{
			TS:      base.Add(time.Duration(i) * time.Minute),
			Actor:   "admin@example.com",
			Kind:    kind,
			OK:      i != 1,
			Message: kind,
		})
		if err != nil {
			t.Fatalf("AppendActivity(%s): %v", kind, err)
		}
	}

	got, err := s.ListActivity(ctx, 2)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries; got %d", len(got))
	}
	if got[0].Kind != "sms.send" || got[1].Kind != "drama.delete" {
		t.Fatalf("expected newest first; got %q, %q", got[0].Kind, got[1].Kind)
	}
	if got[1].OK {
		t.Fatalf("expected drama.delete to be recorded as failed")
	}
}

func TestAppendActivity_RequiresKind(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	if err := s.AppendActivity(context.Background(), model.Activity{}); err == nil {
		t.Fatalf("expected error for empty kind")
	}
}
