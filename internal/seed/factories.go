// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"innercircle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// FactoryOptions tune generated content.
type FactoryOptions struct {
	// Seed makes generated content reproducible. Zero picks a random seed.
	Seed int64
	// MaxDays bounds how far back post dates go.
	MaxDays int
	// DryRun builds entities with synthetic ids without touching the database.
	DryRun bool
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db    *gorm.DB
	opts  FactoryOptions
	faker *gofakeit.Faker
	now   time.Time
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		now:    time.Now().UTC(),
		nextID: 1000,
	}
}

func (f *Factory) persist(v interface{}, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] create %T id=%d", v, *id)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser persists a user with a profile picture and a unique email.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := f.faker.Name()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "."))

	img := &models.Image{Location: fmt.Sprintf("users/%s-%s/%s", slug, f.faker.LetterN(6), models.ProfilePictureSuffix)}
	if err := f.persist(img, &img.ID); err != nil {
		return nil, err
	}

	email := fmt.Sprintf("%s.%d@%s", slug, f.faker.Number(1000, 9999), f.faker.DomainName())
	source := "seed"
	user := &models.User{Name: name, Email: &email, ImageID: &img.ID, Source: &source}
	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCircle persists a circle owned by owner with the given members.
// Circles are named per owner the same way imports name them.
func (f *Factory) CreateCircle(owner *models.User, ordinal int, members []*models.User) (*models.Circle, error) {
	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	circle := &models.Circle{
		OwnerID:   owner.ID,
		Name:      fmt.Sprintf("circle %d", ordinal),
		MemberKey: models.MemberKey(ids),
	}
	if err := f.persist(circle, &circle.ID); err != nil {
		return nil, err
	}
	for _, id := range models.NormalizeMembers(ids) {
		member := &models.CircleMember{CircleID: circle.ID, UserID: id}
		if f.opts.DryRun {
			continue
		}
		if err := f.db.Create(member).Error; err != nil {
			return nil, err
		}
	}
	return circle, nil
}

// PostDate returns a random day within MaxDays before now.
func (f *Factory) PostDate() time.Time {
	d := f.now.AddDate(0, 0, -f.faker.Number(0, f.opts.MaxDays-1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// CreatePost persists a post by author on date, shared to circles.
func (f *Factory) CreatePost(author *models.User, date time.Time, circles []*models.Circle, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:      author.ID,
		CreatedDate: date,
		Text:        f.faker.Paragraph(1, 3, 12, "\n"),
	}
	for _, override := range overrides {
		override(post)
	}
	if f.opts.DryRun {
		return post, f.persist(post, &post.ID)
	}
	if err := f.db.Omit("User").Create(post).Error; err != nil {
		return nil, err
	}
	for _, c := range circles {
		if err := f.db.Create(&models.PostShare{PostID: post.ID, CircleID: c.ID}).Error; err != nil {
			return nil, err
		}
	}
	return post, nil
}

// CreateComment persists a comment by author under post.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{PostID: post.ID, UserID: author.ID, Text: f.faker.Sentence(f.faker.Number(3, 14))}
	if err := f.persist(comment, &comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// AttachImage persists a photo and attaches it to post.
func (f *Factory) AttachImage(post *models.Post) (*models.Image, error) {
	source := f.faker.URL()
	img := &models.Image{Location: fmt.Sprintf("posts/%d/%s.jpg", post.ID, f.faker.UUID()), Source: &source}
	if err := f.persist(img, &img.ID); err != nil {
		return nil, err
	}
	link := &models.PostImage{PostID: post.ID, ImageID: img.ID}
	return img, f.persist(link, &link.ID)
}

// AttachVideo persists a clip and attaches it to post.
func (f *Factory) AttachVideo(post *models.Post) (*models.Video, error) {
	vid := &models.Video{Location: fmt.Sprintf("posts/%d/%s%s", post.ID, f.faker.UUID(), models.VideoSuffix)}
	if err := f.persist(vid, &vid.ID); err != nil {
		return nil, err
	}
	link := &models.PostVideo{PostID: post.ID, VideoID: vid.ID}
	return vid, f.persist(link, &link.ID)
}
