package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"innercircle/internal/models"
	"innercircle/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedName string
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "email"}).
					AddRow(1, "Alice", "alice@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "circle_user" WHERE "circle_user"."id" = $1 ORDER BY "circle_user"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedName: "Alice",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "circle_user" WHERE "circle_user"."id" = $1 ORDER BY "circle_user"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: "NOT_FOUND",
		},
		{
			name:   "Storage failure",
			userID: 5,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "circle_user"`)).
					WithArgs(5, 1).
					WillReturnError(errors.New("broken pipe"))
			},
			expectedCode: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.True(t, models.IsCode(err, tt.expectedCode), "got %v", err)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedName, user.Name)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ListAndEmail(t *testing.T) {
	g := testutil.NewGraph(t)
	zed := g.User("zed")
	amy := g.User("amy")
	noEmail := &models.User{Name: "amy"}
	require.NoError(t, g.DB.Create(noEmail).Error)

	repo := NewUserRepository(g.DB)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "amy", users[0].Name)
	assert.Equal(t, "amy", users[1].Name)
	assert.Equal(t, zed.ID, users[2].ID)

	found, err := repo.GetByEmail(ctx, "amy@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, amy.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.SetEmailByName(ctx, "zed", "z@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.SetEmailByName(ctx, "zed", "amy@example.com")
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"), "duplicate email: %v", err)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: circle_user.email")))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueConstraintError(errors.New("timeout")))
}
