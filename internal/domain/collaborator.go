package domain

import "github.com/google/uuid"

// Collaborator operation names, used in CollaboratorError.Op and as metric labels.
const (
	OpCategorize = "categorize"
	OpAudit      = "audit"
)

// MaxRecentCategories caps how many previously used labels are offered to the
// taxonomy collaborator as a reuse hint.
const MaxRecentCategories = 20

// FeedbackSamples is how many approved and how many rejected feedback
// records are passed to the audit collaborator.
const FeedbackSamples = 3

// CategorizeRequest is the input to the taxonomy collaborator.
type CategorizeRequest struct {
	Entries          []LogEntry
	RecentCategories []string
}

// Categorization maps entry IDs to category labels.
type Categorization map[uuid.UUID]string

// AuditRequest is the input to the audit collaborator.
type AuditRequest struct {
	Tone      Tone
	Notebook  string
	QuickNote string
	Entries   []LogEntry
	Approved  []Feedback
	Rejected  []Feedback
}
