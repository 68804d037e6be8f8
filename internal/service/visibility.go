// Package service holds the application's use cases on top of the
// repositories: the feed, media authorization, circles and sessions.
package service

import (
	"context"

	"innercircle/internal/files"
	"innercircle/internal/models"
	"innercircle/internal/observability"
	"innercircle/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// PostPageSize is the number of posts in one feed page.
	PostPageSize = 20
	// CommentsPerPost is how many of the latest comments come with each post.
	CommentsPerPost = 3
)

// VisibilityResolver builds the feed a user is allowed to see.
type VisibilityResolver struct {
	posts       repository.PostRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	resolver    files.Resolver
}

func NewVisibilityResolver(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	attachments repository.AttachmentRepository,
	resolver files.Resolver,
) *VisibilityResolver {
	return &VisibilityResolver{
		posts:       posts,
		comments:    comments,
		attachments: attachments,
		resolver:    resolver,
	}
}

// ListVisiblePosts returns one page of posts visible to userID, newest
// first. beforeID, when set, is an exclusive id cursor. Comments and media
// are only fetched for the posts on the page.
func (s *VisibilityResolver) ListVisiblePosts(ctx context.Context, userID uint, beforeID *uint) ([]models.PostView, error) {
	span, ctx := observability.NewSpan(ctx, "VisibilityResolver.ListVisiblePosts")
	defer span.End()
	span.AddAttributes(attribute.Int64("user.id", int64(userID)))

	rows, err := s.posts.ListVisible(ctx, userID, beforeID, PostPageSize)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.PostPageSize.Observe(float64(len(rows)))
	if len(rows) == 0 {
		return []models.PostView{}, nil
	}

	ids := make([]uint, len(rows))
	index := make(map[uint]int, len(rows))
	views := make([]models.PostView, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
		author, err := s.author(ctx, row.UserID, row.UserName, row.UserImage)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		views[i] = models.PostView{
			ID:          row.ID,
			Text:        row.PostText,
			CreatedDate: row.CreatedDate.Format(models.DateLayout),
			User:        author,
			Comments:    []models.PostComment{},
			Images:      []models.MediaView{},
			Videos:      []models.MediaView{},
		}
	}

	comments, err := s.comments.ListLatestByPosts(ctx, ids, CommentsPerPost)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	for _, c := range comments {
		i, ok := index[c.PostID]
		if !ok {
			continue
		}
		author, err := s.author(ctx, c.UserID, c.UserName, c.UserImage)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		views[i].Comments = append(views[i].Comments, models.PostComment{Text: c.Text, User: author})
	}

	images, err := s.attachments.ListImagesByPosts(ctx, ids)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.attach(ctx, images, index, views, func(v *models.PostView, m models.MediaView) {
		v.Images = append(v.Images, m)
	}); err != nil {
		span.SetError(err)
		return nil, err
	}

	videos, err := s.attachments.ListVideosByPosts(ctx, ids)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.attach(ctx, videos, index, views, func(v *models.PostView, m models.MediaView) {
		v.Videos = append(v.Videos, m)
	}); err != nil {
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(attribute.Int("feed.posts", len(views)))
	return views, nil
}

func (s *VisibilityResolver) attach(
	ctx context.Context,
	rows []repository.AttachmentRow,
	index map[uint]int,
	views []models.PostView,
	add func(*models.PostView, models.MediaView),
) error {
	for _, row := range rows {
		i, ok := index[row.PostID]
		if !ok {
			continue
		}
		media, err := s.mediaView(ctx, row)
		if err != nil {
			return err
		}
		add(&views[i], media)
	}
	return nil
}

func (s *VisibilityResolver) mediaView(ctx context.Context, row repository.AttachmentRow) (models.MediaView, error) {
	location, err := s.resolver.Resolve(ctx, row.Location)
	if err != nil {
		return models.MediaView{}, models.NewInternalError(err)
	}
	thumbnail, err := s.resolver.Resolve(ctx, models.ThumbnailLocation(row.Location))
	if err != nil {
		return models.MediaView{}, models.NewInternalError(err)
	}
	view := models.MediaView{ID: row.ID, Location: location, Thumbnail: thumbnail}
	if row.Source != nil {
		view.Source = *row.Source
	}
	return view, nil
}

func (s *VisibilityResolver) author(ctx context.Context, id uint, name string, image *string) (models.UserMinimal, error) {
	u := models.UserMinimal{ID: id, Name: name}
	if image == nil || *image == "" {
		return u, nil
	}
	resolved, err := s.resolver.Resolve(ctx, *image)
	if err != nil {
		return u, models.NewInternalError(err)
	}
	u.Image = resolved
	return u, nil
}
