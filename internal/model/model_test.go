package model

import "testing"

func ptr(s string) *string { return &s }

func TestRegistrationPatchValid(t *testing.T) {
	tests := []struct {
		name  string
		patch RegistrationPatch
		want  bool
	}{
		{name: "empty", patch: RegistrationPatch{}, want: false},
		{name: "user only", patch: RegistrationPatch{UserID: ptr("u1")}, want: true},
		{name: "event only", patch: RegistrationPatch{EventID: ptr("e1")}, want: true},
		{name: "both", patch: RegistrationPatch{UserID: ptr("u1"), EventID: ptr("e1")}, want: true},
		{name: "blank user", patch: RegistrationPatch{UserID: ptr("  ")}, want: false},
		{name: "blank event with user", patch: RegistrationPatch{UserID: ptr("u1"), EventID: ptr("")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventCapacityHelpers(t *testing.T) {
	e := Event{MaxPlayers: 3, RegisteredCount: 2}
	if e.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", e.Remaining())
	}
	if e.IsFull() {
		t.Error("IsFull() = true with one seat left")
	}
	e.RegisteredCount = 3
	if !e.IsFull() {
		t.Error("IsFull() = false at capacity")
	}
}

func TestSessionCanManage(t *testing.T) {
	owner := Session{UserID: "u1"}
	if !owner.CanManage("u1") {
		t.Error("owner cannot manage own resource")
	}
	if owner.CanManage("u2") {
		t.Error("owner can manage someone else's resource")
	}
	if !(Session{IsAdmin: true}).CanManage("u2") {
		t.Error("admin cannot manage resource")
	}
	if (Session{}).CanManage("") {
		t.Error("anonymous session matched empty owner")
	}
}
