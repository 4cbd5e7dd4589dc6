package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// Complaint categories accepted at submission.
const (
	CategorySanitation     = "Sanitation"
	CategoryInfrastructure = "Infrastructure"
	CategoryRagging        = "Ragging / Bullying"
	CategorySecurity       = "Security"
	CategoryFaculty        = "Faculty"
	CategoryOther          = "Other"
)

// Complaint statuses. Every complaint starts as Submitted.
const (
	StatusSubmitted  = "Submitted"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

// Categories lists every valid complaint category.
var Categories = []string{
	CategorySanitation,
	CategoryInfrastructure,
	CategoryRagging,
	CategorySecurity,
	CategoryFaculty,
	CategoryOther,
}

// Statuses lists every valid complaint status.
var Statuses = []string{
	StatusSubmitted,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

// Complaint is the central record tracked through its lifecycle.
// Title, description, category and evidence refs are fixed at creation;
// only status and the one-shot feedback pair mutate afterwards.
type Complaint struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Category    string         `gorm:"type:text;not null" json:"category"`
	Status      string         `gorm:"type:text;not null;default:Submitted" json:"status"`
	// EvidenceRefs holds stable paths of uploaded evidence files (max 5).
	EvidenceRefs pq.StringArray `gorm:"type:text[]" json:"evidenceRefs"`
	// Feedback and Rating are both nil until a single feedback submission
	// occurs; they are always set together.
	Feedback  *string   `gorm:"type:text" json:"feedback,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that assigns a new UUID if the ID is unset.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasFeedback reports whether feedback has already been attached.
func (c *Complaint) HasFeedback() bool {
	return c.Feedback != nil || c.Rating != nil
}

// ValidCategory reports whether category is a member of the fixed enumeration.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidStatus reports whether status is a member of the status enumeration.
func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
