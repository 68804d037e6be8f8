package seed

import (
	"fmt"
	"log"
	"slices"
	"time"

	"innercircle/internal/dataload"
	"innercircle/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	Seed        int64
	MaxDays     int
	// DemoEmail, when set, is assigned to the first user so the Google
	// login can be tried against the seeded graph.
	DemoEmail string
}

// Summary counts what Seed created.
type Summary struct {
	Users    int
	Circles  int
	Posts    int
	Comments int
	Images   int
	Videos   int
}

// Seed populates the database with a random sharing graph: users, a few
// circles per user, posts shared to those circles (some private), and
// comments and media on the posts.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", opts.NumUsers)
	}
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	var summary Summary
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.ShouldClean {
			log.Println("🗑️  Clearing existing data...")
			if err := dataload.Reset(tx); err != nil {
				return err
			}
		}

		f := NewFactory(tx, FactoryOptions{Seed: opts.Seed, MaxDays: opts.MaxDays})
		users, err := createUsers(f, opts)
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		summary.Users = len(users)

		circles, err := createCircles(f, users)
		if err != nil {
			return fmt.Errorf("failed to create circles: %w", err)
		}
		for _, cs := range circles {
			summary.Circles += len(cs)
		}

		if err := createPosts(f, users, circles, opts.NumPosts, &summary); err != nil {
			return fmt.Errorf("failed to create posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎉 Seeded %d users, %d circles, %d posts, %d comments, %d images, %d videos",
		summary.Users, summary.Circles, summary.Posts, summary.Comments, summary.Images, summary.Videos)
	return &summary, nil
}

func createUsers(f *Factory, opts Options) ([]*models.User, error) {
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		var overrides []func(*models.User)
		if i == 0 && opts.DemoEmail != "" {
			email := opts.DemoEmail
			overrides = append(overrides, func(u *models.User) { u.Email = &email })
		}
		u, err := f.CreateUser(overrides...)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// createCircles gives every user one to three circles of other users.
func createCircles(f *Factory, users []*models.User) (map[uint][]*models.Circle, error) {
	out := make(map[uint][]*models.Circle, len(users))
	for _, owner := range users {
		others := slices.DeleteFunc(slices.Clone(users), func(u *models.User) bool { return u.ID == owner.ID })
		seen := map[string]bool{}

		n := f.faker.Number(1, 3)
		for i := 0; i < n; i++ {
			size := f.faker.Number(1, min(len(others), 5))
			members := pick(f, others, size)
			ids := make([]uint, len(members))
			for j, m := range members {
				ids[j] = m.ID
			}
			key := models.MemberKey(ids)
			if seen[key] {
				continue
			}
			seen[key] = true

			c, err := f.CreateCircle(owner, len(out[owner.ID])+1, members)
			if err != nil {
				return nil, err
			}
			out[owner.ID] = append(out[owner.ID], c)
		}
	}
	return out, nil
}

type plannedPost struct {
	author *models.User
	date   time.Time
}

func createPosts(f *Factory, users []*models.User, circles map[uint][]*models.Circle, count int, summary *Summary) error {
	// Ids must grow with dates for the feed cursor, so plan the dates first.
	plan := make([]plannedPost, count)
	for i := range plan {
		plan[i] = plannedPost{author: users[f.faker.Number(0, len(users)-1)], date: f.PostDate()}
	}
	slices.SortStableFunc(plan, func(a, b plannedPost) int { return a.date.Compare(b.date) })

	for _, p := range plan {
		var shareTo []*models.Circle
		// Roughly one post in five stays private.
		if owned := circles[p.author.ID]; len(owned) > 0 && f.faker.Number(1, 5) > 1 {
			shareTo = pick(f, owned, f.faker.Number(1, len(owned)))
		}
		post, err := f.CreatePost(p.author, p.date, shareTo)
		if err != nil {
			return err
		}
		summary.Posts++

		for i, n := 0, f.faker.Number(0, 5); i < n; i++ {
			if _, err := f.CreateComment(users[f.faker.Number(0, len(users)-1)], post); err != nil {
				return err
			}
			summary.Comments++
		}
		for i, n := 0, f.faker.Number(0, 3); i < n; i++ {
			if _, err := f.AttachImage(post); err != nil {
				return err
			}
			summary.Images++
		}
		if f.faker.Number(1, 10) == 1 {
			if _, err := f.AttachVideo(post); err != nil {
				return err
			}
			summary.Videos++
		}
	}
	return nil
}

// pick returns n distinct elements of items in random order.
func pick[T any](f *Factory, items []T, n int) []T {
	shuffled := slices.Clone(items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := f.faker.Number(0, i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:min(n, len(shuffled))]
}
