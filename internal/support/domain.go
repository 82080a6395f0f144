package support

import "time"

// Announcement is a broadcast visible to the roles it targets.
type Announcement struct {
	ID          int64
	Title       string
	Content     string
	AuthorID    int64
	AuthorName  string
	Importance  string
	TargetRoles []string
	Published   bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// HelpTopic is a published documentation page.
type HelpTopic struct {
	ID        int64
	Title     string
	Content   string
	Category  string
	Tags      []string
	ViewCount int
	Published bool
	Order     int
	CreatedAt time.Time
}

// FAQ is one published question and answer.
type FAQ struct {
	ID         int64
	Question   string
	Answer     string
	Category   string
	ViewCount  int
	Helpful    int
	NotHelpful int
	Published  bool
	Order      int
}

// FeedbackCategory buckets user feedback.
type FeedbackCategory string

const (
	FeedbackBug         FeedbackCategory = "bug"
	FeedbackFeature     FeedbackCategory = "feature"
	FeedbackGeneral     FeedbackCategory = "general"
	FeedbackPerformance FeedbackCategory = "performance"
)

// ValidFeedbackCategory reports whether s names a known category.
func ValidFeedbackCategory(s string) bool {
	switch FeedbackCategory(s) {
	case FeedbackBug, FeedbackFeature, FeedbackGeneral, FeedbackPerformance:
		return true
	}
	return false
}

// Feedback is one submitted report. Status and priority default to
// new/medium and are triaged out of band.
type Feedback struct {
	ID        int64
	UserID    int64
	Message   string
	Category  FeedbackCategory
	Status    string
	Priority  string
	Email     string
	UserAgent *string
	CreatedAt time.Time
}

// Message length bounds for feedback submissions.
const (
	FeedbackMinLen = 10
	FeedbackMaxLen = 5000
)
