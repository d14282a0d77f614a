package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{DSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
}

func TestDuplicateKeyTranslation(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Create(&models.User{Email: "a@x.com", PasswordHash: "h", Status: models.StatusPendingVerification}).Error)

	err = db.Create(&models.User{Email: "a@x.com", PasswordHash: "h", Status: models.StatusPendingVerification}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "enumm", Name: "identity", Password: "pw"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "enumm", Password: "pw", Name: "identity", Host: "db", Port: 3307})
	require.NoError(t, err)
	require.Contains(t, dsn, "enumm:pw@tcp(db:3307)/identity?")
	require.Contains(t, dsn, "parseTime=True")
}
