// Package dataload imports an exported social graph (users, posts,
// comments, media and who each post was shared with) into the database.
package dataload

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"innercircle/internal/models"
	"innercircle/internal/validation"

	"gopkg.in/yaml.v3"
)

// DateLayout is the format of post dates in export files.
const DateLayout = "Jan 02, 2006"

// File is the export document. JSON exports decode as YAML.
type File struct {
	Posts map[string]Post `yaml:"posts"`
	Users map[string]User `yaml:"users"`
}

type Post struct {
	Date       string       `yaml:"date"`
	Images     []string     `yaml:"images"`
	Videos     []string     `yaml:"videos"`
	User       string       `yaml:"user"`
	Text       string       `yaml:"text"`
	Comments   []Comment    `yaml:"comments"`
	SharedWith []SharedWith `yaml:"shared_with"`
}

type Comment struct {
	Text string `yaml:"text"`
	User string `yaml:"user"`
}

type SharedWith struct {
	User string `yaml:"user"`
}

type User struct {
	Image string `yaml:"image"`
	Name  string `yaml:"name"`
}

// Decode reads an export document. Unknown fields are ignored.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("export file is empty")
		}
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &f, nil
}

// Validate checks that every referenced user exists and every date parses.
// All problems are reported together.
func (f *File) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, key := range slices.Sorted(maps.Keys(f.Users)) {
		u := f.Users[key]
		if err := validation.ValidateDisplayName(u.Name); err != nil {
			add("user %q: %v", key, err)
		}
		if strings.TrimSpace(u.Image) == "" {
			add("user %q: image is required", key)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(f.Posts)) {
		p := f.Posts[key]
		if _, err := time.Parse(DateLayout, p.Date); err != nil {
			add("post %q: invalid date %q", key, p.Date)
		}
		if _, ok := f.Users[p.User]; !ok {
			add("post %q: unknown user %q", key, p.User)
		}
		for i, c := range p.Comments {
			if _, ok := f.Users[c.User]; !ok {
				add("post %q comment %d: unknown user %q", key, i, c.User)
			}
		}
		for _, s := range p.SharedWith {
			if _, ok := f.Users[s.User]; !ok {
				add("post %q shared_with: unknown user %q", key, s.User)
			}
		}
	}

	if len(problems) > 0 {
		return models.NewValidationError("invalid export: " + strings.Join(problems, "; "))
	}
	return nil
}

type userEntry struct {
	key  string
	user User
}

// usersInOrder sorts users by name, then key.
func (f *File) usersInOrder() []userEntry {
	out := make([]userEntry, 0, len(f.Users))
	for key, u := range f.Users {
		out = append(out, userEntry{key: key, user: u})
	}
	slices.SortFunc(out, func(a, b userEntry) int {
		if c := strings.Compare(a.user.Name, b.user.Name); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	return out
}

type postEntry struct {
	key  string
	date time.Time
	post Post
}

// postsInOrder sorts posts by date, then key. Call Validate first.
func (f *File) postsInOrder() []postEntry {
	out := make([]postEntry, 0, len(f.Posts))
	for key, p := range f.Posts {
		date, _ := time.Parse(DateLayout, p.Date)
		out = append(out, postEntry{key: key, date: date, post: p})
	}
	slices.SortFunc(out, func(a, b postEntry) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	return out
}
