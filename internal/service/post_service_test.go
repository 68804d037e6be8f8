package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"innercircle/internal/models"
	"innercircle/internal/repository"
	"innercircle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_Validation(t *testing.T) {
	circles := &circleRepoStub{ownedIDsFn: func(_ context.Context, _ uint, ids []uint) ([]uint, error) {
		return ids, nil
	}}
	posts := &postRepoStub{createSharedFn: func(context.Context, *models.Post, []uint) error {
		t.Fatal("invalid posts must not be stored")
		return nil
	}}
	svc := NewPostService(posts, circles)

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"empty text", CreatePostInput{UserID: 1, Text: "  ", CircleIDs: []uint{1}}},
		{"too long", CreatePostInput{UserID: 1, Text: strings.Repeat("x", 5001), CircleIDs: []uint{1}}},
		{"zero circle id", CreatePostInput{UserID: 1, Text: "hi", CircleIDs: []uint{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestCreatePost_RejectsForeignCircles(t *testing.T) {
	circles := &circleRepoStub{ownedIDsFn: func(_ context.Context, owner uint, ids []uint) ([]uint, error) {
		assert.Equal(t, uint(1), owner)
		assert.Equal(t, []uint{2, 7}, ids)
		return []uint{2}, nil
	}}
	svc := NewPostService(&postRepoStub{}, circles)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Text: "hi", CircleIDs: []uint{7, 2, 7}})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))
}

func TestCreatePost_StorageError(t *testing.T) {
	circles := &circleRepoStub{ownedIDsFn: func(context.Context, uint, []uint) ([]uint, error) {
		return nil, models.NewInternalError(errStorage)
	}}
	svc := NewPostService(&postRepoStub{}, circles)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Text: "hi", CircleIDs: []uint{1}})
	assert.ErrorIs(t, err, errStorage)
}

func TestCreatePost_SharesToCircles(t *testing.T) {
	g := testutil.NewGraph(t)
	alice, bob, carol := g.User("alice"), g.User("bob"), g.User("carol")
	circle := g.Circle(alice, bob)

	svc := NewPostService(repository.NewPostRepository(g.DB), repository.NewCircleRepository(g.DB))
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Text: "hello circle", CircleIDs: []uint{circle.ID}})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "2024-03-09", post.CreatedDate.Format(models.DateLayout))

	r := newGraphResolver(g)
	got, err := r.ListVisiblePosts(ctx, bob.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, postIDs(got))

	got, err = r.ListVisiblePosts(ctx, carol.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: carol.ID, Text: "sneaky", CircleIDs: []uint{circle.ID}})
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))
}

func TestCreatePost_PrivateWithoutCircles(t *testing.T) {
	g := testutil.NewGraph(t)
	alice, bob := g.User("alice"), g.User("bob")
	g.Circle(alice, bob)

	svc := NewPostService(repository.NewPostRepository(g.DB), repository.NewCircleRepository(g.DB))
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Text: "note to self"})
	require.NoError(t, err)

	var shares int64
	require.NoError(t, g.DB.Model(&models.PostShare{}).Where("post_id = ?", post.ID).Count(&shares).Error)
	assert.Zero(t, shares)

	r := newGraphResolver(g)
	got, err := r.ListVisiblePosts(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, postIDs(got))

	got, err = r.ListVisiblePosts(ctx, bob.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
