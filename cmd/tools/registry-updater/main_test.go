// cmd/tools/registry-updater/main_test.go
package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-workers/pkg/registry"
)

func TestSyncRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, syncRegistry(path, "1.0.0", now))
	require.NoError(t, validateRegistry(path))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 5)
	assert.Equal(t, "2024-06-15T00:00:00Z", reg.LastUpdated)

	a, ok := reg.Find("create-loan")
	require.True(t, ok)
	assert.Equal(t, "completed", a.ImplementationStatus)
	assert.ElementsMatch(t, []interface{}{"customerId", "loanAmount", "interestRate", "tenure"}, a.InputSchema["required"])

	props, ok := a.InputSchema["properties"].(map[string]interface{})
	require.True(t, ok)
	amount, ok := props["loanAmount"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), amount["exclusiveMinimum"])
	assert.NotContains(t, amount, "minimum")
}

func TestSyncRegistry_KeepsStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	now := time.Now()

	require.NoError(t, syncRegistry(path, "1.0.0", now))
	require.NoError(t, updateActivity(path, "view-loan", "status", "verified", now))
	require.NoError(t, syncRegistry(path, "1.1.0", now))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, _ := reg.Find("view-loan")
	assert.Equal(t, "verified", a.ImplementationStatus)
	assert.Equal(t, "1.1.0", a.Version)
	assert.Len(t, reg.Activities, 5)
}

func TestUpdateActivity_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, syncRegistry(path, "1.0.0", time.Now()))

	assert.EqualError(t, updateActivity(path, "missing", "status", "x", time.Now()), "activity with ID missing not found")
	assert.EqualError(t, updateActivity(path, "view-loan", "color", "x", time.Now()), "unknown field: color")
	assert.Error(t, updateActivity(path, "view-loan", "retries", "many", time.Now()))
}

func TestValidateRegistry_MissingWorker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "view-loan", DisplayName: "View Loan", Category: "credit", TaskType: "view-loan"},
	}}
	require.NoError(t, reg.Save(path))

	assert.EqualError(t, validateRegistry(path), "worker check-eligibility is not registered")
}
