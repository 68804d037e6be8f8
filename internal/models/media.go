package models

import "strings"

const (
	// ThumbnailSuffix is appended to a media location to address its thumbnail.
	ThumbnailSuffix = ".thumbnail.jpg"
	// ProfilePictureSuffix marks a location as a user's profile picture.
	ProfilePictureSuffix = "ProfilePicture.jpg"
	// VideoSuffix marks a location as a video.
	VideoSuffix = ".mp4"
)

// MediaKind classifies a requested media location.
type MediaKind string

const (
	MediaProfilePicture MediaKind = "profile_picture"
	MediaVideo          MediaKind = "video"
	MediaImage          MediaKind = "image"
)

// Image is a stored picture. Location is relative to the storage root.
type Image struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Location string  `gorm:"not null;index" json:"location"`
	Source   *string `json:"source,omitempty"`
}

func (Image) TableName() string { return "image" }

// Video is a stored video.
type Video struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Location string  `gorm:"not null;index" json:"location"`
	Source   *string `json:"source,omitempty"`
}

func (Video) TableName() string { return "video" }

// MediaView is an image or video as returned to clients, with resolved URLs.
type MediaView struct {
	ID        uint   `json:"id"`
	Location  string `json:"location"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
}

// ThumbnailLocation returns the thumbnail location for a stored location.
func ThumbnailLocation(location string) string {
	return location + ThumbnailSuffix
}

// PrimaryLocation strips a thumbnail suffix, if any.
func PrimaryLocation(location string) string {
	return strings.TrimSuffix(location, ThumbnailSuffix)
}

// ClassifyMedia decides which access rule applies to location. Thumbnails
// are classified by the media they belong to.
func ClassifyMedia(location string) (MediaKind, string) {
	primary := PrimaryLocation(location)
	switch {
	case strings.HasSuffix(primary, ProfilePictureSuffix):
		return MediaProfilePicture, primary
	case strings.HasSuffix(primary, VideoSuffix):
		return MediaVideo, primary
	default:
		return MediaImage, primary
	}
}
