package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asset-tracker-api/internal/models"
)

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "admin", "admin@example.com", "hash", "Administrator", "ADMIN", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).WithArgs("admin").WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsernameNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WithArgs(anyArgs(9)...).WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Username: "staff", Email: "staff@example.com", PasswordHash: "hash", Role: models.RoleStaff, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeRefreshTokenSkipsRevoked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1 AND revoked = FALSE")).
		WithArgs("rt-1", at).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "rt-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
