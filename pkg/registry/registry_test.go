// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{ID: id, DisplayName: id, Category: "credit", TaskType: id}
}

func TestUpsert(t *testing.T) {
	reg := &ActivityRegistry{}

	assert.False(t, reg.Upsert(activity("view-loan")))
	assert.False(t, reg.Upsert(activity("create-loan")))

	updated := activity("view-loan")
	updated.Version = "1.1.0"
	assert.True(t, reg.Upsert(updated))

	require.Len(t, reg.Activities, 2)
	assert.Equal(t, "create-loan", reg.Activities[0].ID)
	got, ok := reg.Find("view-loan")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", got.Version)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{name: "valid", reg: ActivityRegistry{Activities: []Activity{activity("a"), activity("b")}}},
		{name: "empty", reg: ActivityRegistry{}, wantErr: "registry contains no activities"},
		{name: "duplicate", reg: ActivityRegistry{Activities: []Activity{activity("a"), activity("a")}}, wantErr: "duplicate activity ID: a"},
		{name: "missing category", reg: ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a"}}}, wantErr: "activity a missing required field: Category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{activity("check-eligibility")}}

	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Version, loaded.Version)
	assert.Equal(t, "check-eligibility", loaded.Activities[0].TaskType)
}
