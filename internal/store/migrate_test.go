// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicsessions/magicsessions/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

// postgresql:// must be rewritten to pgx5://; a bad rewrite surfaces as
// "unknown driver" rather than a connection failure.
func TestNewMigrator_PostgresqlScheme(t *testing.T) {
	_, err := NewMigrator("postgresql://localhost:1/testdb")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

func TestToMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/auth", "pgx5://u:p@db:5432/auth"},
		{"postgresql://db/auth?sslmode=disable", "pgx5://db/auth?sslmode=disable"},
		{"pgx5://db/auth", "pgx5://db/auth"},
		{"mysql://db/auth", "mysql://db/auth"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, toMigrateURL(tt.in))
		})
	}
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	forced         int
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func (m *mockMigrate) Force(v int) error {
	m.forced = v
	return m.forceErr
}

func TestMigrator_Operations(t *testing.T) {
	tests := []struct {
		name     string
		mock     *mockMigrate
		run      func(*Migrator) error
		wantCode string
	}{
		{"up applies", &mockMigrate{}, (*Migrator).Up, ""},
		{"up with nothing pending", &mockMigrate{upErr: migrate.ErrNoChange}, (*Migrator).Up, ""},
		{"up fails", &mockMigrate{upErr: errors.New("database locked")}, (*Migrator).Up, "MIGRATION_UP_FAILED"},
		{"down rolls back", &mockMigrate{}, (*Migrator).Down, ""},
		{"down with nothing applied", &mockMigrate{downErr: migrate.ErrNoChange}, (*Migrator).Down, ""},
		{"down fails", &mockMigrate{downErr: errors.New("constraint violation")}, (*Migrator).Down, "MIGRATION_DOWN_FAILED"},
		{
			"steps forward", &mockMigrate{},
			func(m *Migrator) error { return m.Steps(2) }, "",
		},
		{
			"zero steps is a no-op", &mockMigrate{stepsErr: migrate.ErrNoChange},
			func(m *Migrator) error { return m.Steps(0) }, "",
		},
		{
			"steps fail", &mockMigrate{stepsErr: errors.New("file does not exist")},
			func(m *Migrator) error { return m.Steps(-1) }, "MIGRATION_STEPS_FAILED",
		},
		{
			"force fails", &mockMigrate{forceErr: errors.New("no such version")},
			func(m *Migrator) error { return m.Force(2) }, "MIGRATION_FORCE_FAILED",
		},
		{
			"force rejects negative versions", &mockMigrate{},
			func(m *Migrator) error { return m.Force(-1) }, "INVALID_VERSION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.mock})
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_Force_PassesVersion(t *testing.T) {
	mock := &mockMigrate{}
	require.NoError(t, (&Migrator{m: mock}).Force(3))
	assert.Equal(t, 3, mock.forced)
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports version and dirty flag", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 2, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
		assert.True(t, dirty)
	})

	t.Run("fresh database is version zero", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.False(t, dirty)
	})

	t.Run("driver error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
		_, _, err := m.Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name          string
		srcErr, dbErr error
		wantComponent string
	}{
		{"clean", nil, nil, ""},
		{"source fails", errors.New("source close failed"), nil, "source"},
		{"database fails", nil, errors.New("db close failed"), "database"},
		{"both fail", errors.New("source close failed"), errors.New("db close failed"), "both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Migrator{m: &mockMigrate{closeSourceErr: tt.srcErr, closeDbErr: tt.dbErr}}).Close()
			if tt.wantComponent == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.wantComponent)
			if tt.srcErr != nil {
				assert.Contains(t, err.Error(), tt.srcErr.Error())
			}
			if tt.dbErr != nil {
				assert.Contains(t, err.Error(), tt.dbErr.Error())
			}
		})
	}
}

func TestMigrator_Status(t *testing.T) {
	tests := []struct {
		name        string
		mock        *mockMigrate
		wantName    string
		wantApplied []uint
		wantPending []uint
	}{
		{
			name:        "fresh database",
			mock:        &mockMigrate{versionErr: migrate.ErrNilVersion},
			wantPending: []uint{1, 2, 3, 4},
		},
		{
			name:        "partially migrated",
			mock:        &mockMigrate{versionVal: 2},
			wantName:    "000002_create_refresh_tokens",
			wantApplied: []uint{1, 2},
			wantPending: []uint{3, 4},
		},
		{
			name:        "up to date",
			mock:        &mockMigrate{versionVal: 4},
			wantName:    "000004_create_password_reset_tokens",
			wantApplied: []uint{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: tt.mock}
			st, err := m.Status()
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, st.Name)
			assert.Equal(t, tt.wantApplied, st.Applied)
			assert.Equal(t, tt.wantPending, st.Pending)

			pending, err := m.PendingMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.wantPending, pending)

			applied, err := m.AppliedMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
		})
	}
}

func TestMigrator_Status_VersionError(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}

	_, err := m.PendingMigrations()
	errutil.AssertErrorContext(t, err, "operation", "get pending migrations")

	_, err = m.AppliedMigrations()
	errutil.AssertErrorContext(t, err, "operation", "get applied migrations")
}

// closedMock fails every call once Close has run, like golang-migrate does.
type closedMock struct {
	closed bool
}

var errMigratorClosed = errors.New("migrator is closed")

func (m *closedMock) check() error {
	if m.closed {
		return errMigratorClosed
	}
	return nil
}

func (m *closedMock) Up() error         { return m.check() }
func (m *closedMock) Down() error       { return m.check() }
func (m *closedMock) Steps(_ int) error { return m.check() }
func (m *closedMock) Force(_ int) error { return m.check() }

func (m *closedMock) Version() (uint, bool, error) {
	return 1, false, m.check()
}

func (m *closedMock) Close() (error, error) {
	m.closed = true
	return nil, nil
}

func TestMigrator_MethodsAfterClose(t *testing.T) {
	calls := map[string]func(*Migrator) error{
		"Up":    (*Migrator).Up,
		"Down":  (*Migrator).Down,
		"Steps": func(m *Migrator) error { return m.Steps(1) },
		"Force": func(m *Migrator) error { return m.Force(1) },
		"Version": func(m *Migrator) error {
			_, _, err := m.Version()
			return err
		},
		"Status": func(m *Migrator) error {
			_, err := m.Status()
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			migrator := &Migrator{m: &closedMock{}}
			require.NoError(t, migrator.Close())
			assert.Error(t, call(migrator))
		})
	}
}

func TestMigrationName(t *testing.T) {
	tests := []struct {
		version uint
		want    string
	}{
		{1, "000001_create_users"},
		{2, "000002_create_refresh_tokens"},
		{3, "000003_create_email_verification_tokens"},
		{4, "000004_create_password_reset_tokens"},
		{999, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("version_%d", tt.version), func(t *testing.T) {
			name, err := MigrationName(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestLatestVersion(t *testing.T) {
	latest, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(4), latest)
}

func TestAllMigrationVersions_ReturnsCopy(t *testing.T) {
	first, err := allMigrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	original := first[0]
	first[0] = 99999

	second, err := allMigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, original, second[0])
}

func BenchmarkAllMigrationVersions(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := allMigrationVersions(); err != nil {
			b.Fatal(err)
		}
	}
}
