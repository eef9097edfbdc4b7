package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "trigger-registry.json"))
	require.NoError(t, err)
	assert.Len(t, reg.Triggers, 10)
	assert.Contains(t, reg.Names(), "notify-bulletin-updated")
	assert.Contains(t, reg.Names(), "refresh-menu-images")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     TriggerRegistry
		wantErr string
	}{
		{
			name: "valid",
			reg: TriggerRegistry{Triggers: []Trigger{
				{Name: "a", Event: EventCreated, Document: "users/{uid}"},
				{Name: "b", Event: EventScheduled, Schedule: "0 6 * * *"},
			}},
		},
		{
			name:    "missing name",
			reg:     TriggerRegistry{Triggers: []Trigger{{Event: EventCreated, Document: "users/{uid}"}}},
			wantErr: "name is required",
		},
		{
			name: "duplicate",
			reg: TriggerRegistry{Triggers: []Trigger{
				{Name: "a", Event: EventCreated, Document: "users/{uid}"},
				{Name: "a", Event: EventUpdated, Document: "users/{uid}"},
			}},
			wantErr: "duplicate name",
		},
		{
			name:    "collection path",
			reg:     TriggerRegistry{Triggers: []Trigger{{Name: "a", Event: EventCreated, Document: "users"}}},
			wantErr: "collection/{id}",
		},
		{
			name:    "schedule missing",
			reg:     TriggerRegistry{Triggers: []Trigger{{Name: "a", Event: EventScheduled}}},
			wantErr: "schedule is required",
		},
		{
			name:    "unknown event",
			reg:     TriggerRegistry{Triggers: []Trigger{{Name: "a", Event: "deleted", Document: "users/{uid}"}}},
			wantErr: "unknown event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDiff(t *testing.T) {
	reg := TriggerRegistry{Triggers: []Trigger{
		{Name: "notify-user-created"},
		{Name: "send-push-notification"},
		{Name: "refresh-menu-images"},
	}}

	missing, extra := reg.Diff([]string{"send-push-notification", "notify-user-created", "debug-echo"})
	assert.Equal(t, []string{"refresh-menu-images"}, missing)
	assert.Equal(t, []string{"debug-echo"}, extra)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"triggers":[{"name":"x","event":"created"}]}`), 0o600))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := &TriggerRegistry{Version: "1.0.0", Triggers: []Trigger{
		{Name: "notify-review-created", Event: EventCreated, Document: "reviews/{reviewId}", WebhookKind: "review"},
	}}
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg, loaded)
}
