package models

import (
	"strings"

	"gorm.io/gorm"
)

// AccessLevel controls what an account may see and change inside its firm.
type AccessLevel int

const (
	// AccessViewer may read recipes and nutrition data but never prices or costs.
	AccessViewer AccessLevel = iota
	// AccessEditor has full read and write access to the firm's catalog.
	AccessEditor
)

// User represents an application account that can authenticate with the platform.
type User struct {
	gorm.Model
	Email        string      `gorm:"uniqueIndex;not null"`
	PasswordHash string      `gorm:"not null"`
	Name         string
	FirmID       uint        `gorm:"not null;index"`
	AccessLevel  AccessLevel `gorm:"not null;default:0"`
}

// ValidAccessLevel reports whether level is one of the known access levels.
func ValidAccessLevel(level AccessLevel) bool {
	switch level {
	case AccessViewer, AccessEditor:
		return true
	default:
		return false
	}
}

// ParseAccessLevel maps a textual access level to its value. Unknown or blank
// values fall back to AccessViewer.
func ParseAccessLevel(value string) AccessLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "editor", "1":
		return AccessEditor
	default:
		return AccessViewer
	}
}

func (l AccessLevel) String() string {
	switch l {
	case AccessEditor:
		return "editor"
	case AccessViewer:
		return "viewer"
	default:
		return "unknown"
	}
}
