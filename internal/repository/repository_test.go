package repository

import (
	"reflect"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

func strPtr(s string) *string { return &s }

func TestUpdateStatement_Registration(t *testing.T) {
	tests := []struct {
		name      string
		patch     model.RegistrationPatch
		ph        func(int) string
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "user only postgres",
			patch:     model.RegistrationPatch{UserID: strPtr("u2")},
			ph:        pgPlaceholder,
			wantQuery: "UPDATE registrations SET user_id = $1 WHERE id = $2",
			wantArgs:  []any{"u2", "r1"},
		},
		{
			name:      "both postgres",
			patch:     model.RegistrationPatch{UserID: strPtr("u2"), EventID: strPtr("e2")},
			ph:        pgPlaceholder,
			wantQuery: "UPDATE registrations SET user_id = $1, event_id = $2 WHERE id = $3",
			wantArgs:  []any{"u2", "e2", "r1"},
		},
		{
			name:      "event only sqlite",
			patch:     model.RegistrationPatch{EventID: strPtr("e2")},
			ph:        sqlitePlaceholder,
			wantQuery: "UPDATE registrations SET event_id = ? WHERE id = ?",
			wantArgs:  []any{"e2", "r1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := updateStatement("registrations", registrationAssignments(tt.patch), "r1", tt.ph)
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestEventAssignments_EncodesTime(t *testing.T) {
	date := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	maxPlayers := 8
	sets := eventAssignments(model.EventPatch{MaxPlayers: &maxPlayers, EventDate: &date},
		func(t time.Time) any { return toMillis(t) })

	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	if sets[0].column != "max_players" || sets[0].value != 8 {
		t.Errorf("sets[0] = %+v", sets[0])
	}
	if sets[1].column != "event_date" || sets[1].value != date.UnixMilli() {
		t.Errorf("sets[1] = %+v", sets[1])
	}
}
