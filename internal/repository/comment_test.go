package repository

import (
	"context"
	"fmt"
	"testing"

	"innercircle/internal/models"
	"innercircle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListLatestByPosts(t *testing.T) {
	g := testutil.NewGraph(t)
	alice, bob := g.User("alice"), g.User("bob")
	p1 := g.Post(alice, testutil.Day(1), "busy")
	p2 := g.Post(alice, testutil.Day(2), "quiet")
	p3 := g.Post(alice, testutil.Day(3), "not requested")

	var p1Comments []*models.Comment
	for i := 1; i <= 5; i++ {
		p1Comments = append(p1Comments, g.Comment(p1, bob, fmt.Sprintf("c%d", i)))
	}
	g.Comment(p2, alice, "only one")
	g.Comment(p3, bob, "hidden")

	repo := NewCommentRepository(g.DB)
	rows, err := repo.ListLatestByPosts(context.Background(), []uint{p1.ID, p2.ID}, 3)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var texts []string
	for _, r := range rows {
		texts = append(texts, r.Text)
		assert.NotEqual(t, p3.ID, r.PostID)
	}
	// Latest three of p1 in ascending id order, then p2's only comment.
	assert.Equal(t, []string{"c3", "c4", "c5", "only one"}, texts)
	assert.Equal(t, "bob", rows[0].UserName)
	assert.Equal(t, p1.ID, rows[0].PostID)
	require.NotNil(t, rows[0].UserImage)
	assert.Equal(t, "bob/ProfilePicture.jpg", *rows[0].UserImage)
}

func TestCommentRepository_ListLatestByPosts_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	rows, err := repo.ListLatestByPosts(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query for an empty page")
}

func TestCommentRepository_Create(t *testing.T) {
	g := testutil.NewGraph(t)
	alice := g.User("alice")
	p := g.Post(alice, testutil.Day(1), "post")

	repo := NewCommentRepository(g.DB)
	c := &models.Comment{PostID: p.ID, UserID: alice.ID, Text: "first"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotZero(t, c.ID)
}
