// Package models contains data structures for the application's domain models.
package models

import "time"

// DateLayout is the wire format of a post's creation date.
const DateLayout = "2006-01-02"

// Post is a piece of content authored by a user and shared to circles.
type Post struct {
	ID          uint      `gorm:"primaryKey;index:idx_post_created_id,priority:2,sort:desc" json:"id"`
	CreatedDate time.Time `gorm:"type:date;not null;index:idx_post_created_id,priority:1,sort:desc" json:"createdDate"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Text        string    `gorm:"column:post_text;type:text" json:"text"`
}

func (Post) TableName() string { return "post" }

// PostShare makes a post visible to every member of a circle.
type PostShare struct {
	PostID   uint `gorm:"primaryKey;autoIncrement:false"`
	CircleID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (PostShare) TableName() string { return "post_share" }

// Comment belongs to exactly one post.
type Comment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;index" json:"postId"`
	UserID uint   `gorm:"not null" json:"userId"`
	Text   string `gorm:"column:comment_text;type:text" json:"text"`
}

func (Comment) TableName() string { return "comment" }

// PostImage attaches an image to a post. Row id defines display order.
type PostImage struct {
	ID      uint `gorm:"primaryKey"`
	PostID  uint `gorm:"not null;uniqueIndex:idx_post_image_pair"`
	ImageID uint `gorm:"not null;uniqueIndex:idx_post_image_pair"`
}

func (PostImage) TableName() string { return "post_image" }

// PostVideo attaches a video to a post. Row id defines display order.
type PostVideo struct {
	ID      uint `gorm:"primaryKey"`
	PostID  uint `gorm:"not null;uniqueIndex:idx_post_video_pair"`
	VideoID uint `gorm:"not null;uniqueIndex:idx_post_video_pair"`
}

func (PostVideo) TableName() string { return "post_video" }

// PostComment is a comment as rendered under a post.
type PostComment struct {
	Text string      `json:"text"`
	User UserMinimal `json:"user"`
}

// PostView is a visible post with its latest comments and attachments.
type PostView struct {
	ID          uint          `json:"id"`
	Text        string        `json:"text"`
	CreatedDate string        `json:"createdDate"`
	User        UserMinimal   `json:"user"`
	Comments    []PostComment `json:"comments"`
	Images      []MediaView   `json:"images"`
	Videos      []MediaView   `json:"videos"`
}
