package dataload

import (
	"context"
	"fmt"
	"log/slog"

	"innercircle/internal/models"
	"innercircle/internal/repository"

	"gorm.io/gorm"
)

// Options control one import.
type Options struct {
	// ScraperName names the user whose account produced the export. That
	// user gets ScraperEmail and joins every circle they do not own, since
	// everything in the export was visible to them.
	ScraperName  string
	ScraperEmail string
	// Reset deletes the existing graph first. Without it the import refuses
	// to run against a non-empty database.
	Reset bool
}

// Report counts what an import created.
type Report struct {
	Users    int
	Posts    int
	Comments int
	Images   int
	Videos   int
	Circles  int
}

// graphTables lists the graph in delete order.
var graphTables = []interface{}{
	&models.Comment{},
	&models.PostShare{},
	&models.PostImage{},
	&models.PostVideo{},
	&models.Post{},
	&models.CircleMember{},
	&models.Circle{},
	&models.User{},
	&models.Image{},
	&models.Video{},
}

type Loader struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLoader(db *gorm.DB, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}
}

// Load imports f in a single transaction.
func (l *Loader) Load(ctx context.Context, f *File, opts Options) (*Report, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var report *Report
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := Reset(tx); err != nil {
				return err
			}
		} else if err := ensureEmpty(tx); err != nil {
			return err
		}

		var err error
		report, err = newImport(tx).run(ctx, f, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("import complete",
		slog.Int("users", report.Users),
		slog.Int("posts", report.Posts),
		slog.Int("comments", report.Comments),
		slog.Int("images", report.Images),
		slog.Int("videos", report.Videos),
		slog.Int("circles", report.Circles),
	)
	return report, nil
}

// Reset deletes every row of the sharing graph.
func Reset(db *gorm.DB) error {
	del := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range graphTables {
		if err := del.Delete(m).Error; err != nil {
			return models.NewInternalError(fmt.Errorf("reset %T: %w", m, err))
		}
	}
	return nil
}

func ensureEmpty(tx *gorm.DB) error {
	for _, m := range []interface{}{&models.User{}, &models.Post{}} {
		var n int64
		if err := tx.Model(m).Count(&n).Error; err != nil {
			return models.NewInternalError(err)
		}
		if n > 0 {
			return models.NewValidationError("database already holds a graph; re-run with reset to replace it")
		}
	}
	return nil
}

// importRun carries the id maps of one import.
type importRun struct {
	users       repository.UserRepository
	media       repository.MediaRepository
	posts       repository.PostRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	circles     repository.CircleRepository

	userIDs map[string]uint
	report  Report
}

func newImport(tx *gorm.DB) *importRun {
	return &importRun{
		users:       repository.NewUserRepository(tx),
		media:       repository.NewMediaRepository(tx),
		posts:       repository.NewPostRepository(tx),
		comments:    repository.NewCommentRepository(tx),
		attachments: repository.NewAttachmentRepository(tx),
		circles:     repository.NewCircleRepository(tx),
		userIDs:     make(map[string]uint),
	}
}

func (r *importRun) run(ctx context.Context, f *File, opts Options) (*Report, error) {
	var scraperID uint
	for _, e := range f.usersInOrder() {
		id, err := r.createUser(ctx, e)
		if err != nil {
			return nil, err
		}
		if scraperID == 0 && opts.ScraperName != "" && e.user.Name == opts.ScraperName {
			scraperID = id
		}
	}

	if opts.ScraperName != "" {
		if scraperID == 0 {
			return nil, models.NewValidationError(fmt.Sprintf("scraper %q is not a user in the export", opts.ScraperName))
		}
		if opts.ScraperEmail != "" {
			if _, err := r.users.SetEmailByName(ctx, opts.ScraperName, opts.ScraperEmail); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range f.postsInOrder() {
		if err := r.createPost(ctx, e); err != nil {
			return nil, fmt.Errorf("post %q: %w", e.key, err)
		}
	}

	if scraperID != 0 {
		ids, err := r.circles.ListIDsNotOwnedBy(ctx, scraperID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if err := r.circles.AddMember(ctx, id, scraperID); err != nil {
				return nil, err
			}
		}
	}

	return &r.report, nil
}

func (r *importRun) createUser(ctx context.Context, e userEntry) (uint, error) {
	source := e.key
	img := &models.Image{Location: e.user.Image, Source: &source}
	if err := r.media.CreateImage(ctx, img); err != nil {
		return 0, err
	}
	u := &models.User{Name: e.user.Name, ImageID: &img.ID, Source: &source}
	if err := r.users.Create(ctx, u); err != nil {
		return 0, err
	}
	r.userIDs[e.key] = u.ID
	r.report.Users++
	return u.ID, nil
}

func (r *importRun) createPost(ctx context.Context, e postEntry) error {
	post := &models.Post{
		CreatedDate: e.date,
		UserID:      r.userIDs[e.post.User],
		Text:        e.post.Text,
	}
	if err := r.posts.Create(ctx, post); err != nil {
		return err
	}
	r.report.Posts++

	for _, c := range e.post.Comments {
		comment := &models.Comment{PostID: post.ID, UserID: r.userIDs[c.User], Text: c.Text}
		if err := r.comments.Create(ctx, comment); err != nil {
			return err
		}
		r.report.Comments++
	}

	source := e.key
	for _, loc := range e.post.Images {
		img := &models.Image{Location: loc, Source: &source}
		if err := r.media.CreateImage(ctx, img); err != nil {
			return err
		}
		if err := r.attachments.AttachImage(ctx, post.ID, img.ID); err != nil {
			return err
		}
		r.report.Images++
	}
	for _, loc := range e.post.Videos {
		vid := &models.Video{Location: loc, Source: &source}
		if err := r.media.CreateVideo(ctx, vid); err != nil {
			return err
		}
		if err := r.attachments.AttachVideo(ctx, post.ID, vid.ID); err != nil {
			return err
		}
		r.report.Videos++
	}

	// Posts shared with nobody still get a circle of their own so the
	// scraper, who saw them, can be added to it.
	members := make([]uint, 0, len(e.post.SharedWith))
	for _, s := range e.post.SharedWith {
		members = append(members, r.userIDs[s.User])
	}
	circle, created, err := r.circles.FindOrCreate(ctx, post.UserID, members)
	if err != nil {
		return err
	}
	if created {
		r.report.Circles++
	}
	return r.posts.ShareTo(ctx, post.ID, []uint{circle.ID})
}
