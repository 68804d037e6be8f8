package models

import (
	"slices"
	"strconv"
	"strings"
)

// Circle is a named set of users chosen by its owner. MemberKey holds the
// normalized member set so an owner never gets two circles with the same
// members.
type Circle struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OwnerID   uint   `gorm:"not null;uniqueIndex:idx_circle_owner_members,priority:1" json:"ownerId"`
	Owner     User   `gorm:"foreignKey:OwnerID" json:"-"`
	Name      string `gorm:"not null" json:"name"`
	MemberKey string `gorm:"not null;default:'';uniqueIndex:idx_circle_owner_members,priority:2" json:"-"`
}

func (Circle) TableName() string { return "circle" }

// CircleMember records direct membership. Nested circles do not exist.
type CircleMember struct {
	CircleID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID   uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (CircleMember) TableName() string { return "circle_member" }

// CircleView is a circle as listed for its owner.
type CircleView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NormalizeMembers sorts and de-duplicates member ids.
func NormalizeMembers(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// MemberKey renders a member set as its canonical key, e.g. "3,7,12".
func MemberKey(ids []uint) string {
	norm := NormalizeMembers(ids)
	parts := make([]string, len(norm))
	for i, id := range norm {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
