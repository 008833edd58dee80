package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wohhie/cover-letter-tool/binding"
)

func TestMigrateLegacyRecord(t *testing.T) {
	legacy := `{
		"date": "2026-02-11",
		"employerName": "Jane Smith",
		"companyName": "ABC Corp",
		"companyAddress": "1 Main St\nSpringfield\nUSA",
		"position": "Engineer"
	}`
	rec, err := Migrate([]byte(legacy))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, rec.Version)
	assert.Equal(t, Fields{
		Date:                "2026-02-11",
		EmployerCompanyName: "ABC Corp",
		CompanyAddressLine1: "1 Main St",
		CompanyAddressLine2: "Springfield, USA",
		Position:            "Engineer",
	}, rec.Fields)
	assert.Equal(t, binding.DefaultTemplate, rec.Template)
	assert.False(t, rec.EditUnlocked)
}

func TestMigrateLegacyEmployerOnly(t *testing.T) {
	rec, err := Migrate([]byte(`{"employerName":"Jane Smith","companyAddress":"Somewhere"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", rec.Fields.EmployerCompanyName)
	assert.Equal(t, "Somewhere", rec.Fields.CompanyAddressLine1)
	assert.Empty(t, rec.Fields.CompanyAddressLine2)
}

func TestMigrateV1(t *testing.T) {
	rec, err := Migrate([]byte(`{"version":1,"employerCompanyName":"ABC","position":"Dev","template":"{{position}}","isEditing":true}`))
	require.NoError(t, err)
	assert.Equal(t, "ABC", rec.Fields.EmployerCompanyName)
	assert.Equal(t, "Dev", rec.Fields.Position)
	assert.Equal(t, "{{position}}", rec.Template)
	assert.True(t, rec.EditUnlocked)
}

func TestMigrateKeepsExplicitEmptyTemplate(t *testing.T) {
	rec, err := Migrate([]byte(`{"version":2,"fields":{"position":"Dev"},"template":""}`))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Template)
	assert.Equal(t, "Dev", rec.Fields.Position)
}

func TestMigrateRejectsMalformed(t *testing.T) {
	_, err := Migrate([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Migrate([]byte(`{"version":99}`))
	assert.Error(t, err)
}

func TestMigrateVersionWithoutFields(t *testing.T) {
	rec, err := Migrate([]byte(`{"version":2}`))
	require.NoError(t, err)
	assert.Equal(t, Fields{}, rec.Fields)
}

func TestEncodeRoundTrip(t *testing.T) {
	rec := Default("2026-02-11")
	rec.Fields.Position = "Engineer"
	rec.EditUnlocked = true

	data, err := Encode(rec)
	require.NoError(t, err)
	got, err := Migrate(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func testStores(t *testing.T) map[string]Store {
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := Load(ctx, s)
			require.ErrorIs(t, err, ErrNotFound)

			rec := Default("2026-02-11")
			rec.Fields.EmployerCompanyName = "ABC Corp"
			require.NoError(t, Save(ctx, s, rec))

			rec.Fields.Position = "Engineer"
			require.NoError(t, Save(ctx, s, rec))

			got, err := Load(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, rec, got)

			require.NoError(t, s.Delete(ctx, Key))
			_, err = s.Get(ctx, Key)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Key, []byte(`{"version":2,"fields":{"position":"Dev"}}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	rec, err := Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "Dev", rec.Fields.Position)
}
