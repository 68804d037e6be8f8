// Package testutil provides shared fixtures for tests that need a real
// sharing graph: an in-memory sqlite database and a small builder on top.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"innercircle/internal/database"
	"innercircle/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGraphDB opens an isolated in-memory sqlite database with the full schema.
func NewGraphDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Graph builds users, circles and posts with terse helpers that fail the
// test on error.
type Graph struct {
	t  testing.TB
	DB *gorm.DB
}

// NewGraph returns a builder over a fresh database.
func NewGraph(t testing.TB) *Graph {
	return &Graph{t: t, DB: NewGraphDB(t)}
}

// Day returns midnight UTC of 2024-01-<n>.
func Day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func (g *Graph) create(v interface{}) {
	g.t.Helper()
	if err := g.DB.Create(v).Error; err != nil {
		g.t.Fatalf("create %T: %v", v, err)
	}
}

// User creates a user with a profile picture at <name>/ProfilePicture.jpg.
func (g *Graph) User(name string) *models.User {
	g.t.Helper()
	img := &models.Image{Location: name + "/ProfilePicture.jpg"}
	g.create(img)
	email := name + "@example.com"
	u := &models.User{Name: name, Email: &email, ImageID: &img.ID}
	g.create(u)
	return u
}

// Circle creates a circle owned by owner containing members.
func (g *Graph) Circle(owner *models.User, members ...*models.User) *models.Circle {
	g.t.Helper()
	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	c := &models.Circle{OwnerID: owner.ID, Name: fmt.Sprintf("circle of %s", owner.Name), MemberKey: models.MemberKey(ids)}
	g.create(c)
	for _, id := range models.NormalizeMembers(ids) {
		g.create(&models.CircleMember{CircleID: c.ID, UserID: id})
	}
	return c
}

// Post creates a post by author on date, shared to circles.
func (g *Graph) Post(author *models.User, date time.Time, text string, circles ...*models.Circle) *models.Post {
	g.t.Helper()
	p := &models.Post{UserID: author.ID, CreatedDate: date, Text: text}
	g.create(p)
	for _, c := range circles {
		g.create(&models.PostShare{PostID: p.ID, CircleID: c.ID})
	}
	return p
}

// Comment adds a comment by author to post.
func (g *Graph) Comment(post *models.Post, author *models.User, text string) *models.Comment {
	g.t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: author.ID, Text: text}
	g.create(c)
	return c
}

// Image attaches a new image at location to post.
func (g *Graph) Image(post *models.Post, location string) *models.Image {
	g.t.Helper()
	source := "src-" + location
	img := &models.Image{Location: location, Source: &source}
	g.create(img)
	g.create(&models.PostImage{PostID: post.ID, ImageID: img.ID})
	return img
}

// Video attaches a new video at location to post.
func (g *Graph) Video(post *models.Post, location string) *models.Video {
	g.t.Helper()
	v := &models.Video{Location: location}
	g.create(v)
	g.create(&models.PostVideo{PostID: post.ID, VideoID: v.ID})
	return v
}
