package handraise

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType categorizes why a participant wants the floor.
type QuestionType string

const (
	QuestionClarification QuestionType = "clarification"
	QuestionChallenge     QuestionType = "challenge"
	QuestionFollowUp      QuestionType = "follow-up"
	QuestionCounterpoint  QuestionType = "counterpoint"
)

// Urgency is the requester's own claim of importance.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// FloorRequest is one queued request to speak. It lives until a moderator
// acknowledges or dismisses it; there is no automatic expiry.
type FloorRequest struct {
	ID           string       `json:"id"`
	RequesterID  string       `json:"requester_id"`
	QuestionType QuestionType `json:"question_type"`
	Urgency      Urgency      `json:"urgency"`
	Preview      string       `json:"preview"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Queue holds pending floor requests in insertion order. Resolution is
// explicit and manual, not FIFO-automatic.
//
// Not safe for concurrent use; the session controller serializes access.
type Queue struct {
	reqs []FloorRequest
}

func NewQueue() *Queue { return &Queue{} }

// Request appends a floor request. No dedup, no cap.
func (q *Queue) Request(requesterID string, qt QuestionType, preview string, urgency Urgency) FloorRequest {
	r := FloorRequest{
		ID:           uuid.New().String(),
		RequesterID:  requesterID,
		QuestionType: qt,
		Urgency:      urgency,
		Preview:      preview,
		CreatedAt:    time.Now().UTC(),
	}
	q.reqs = append(q.reqs, r)
	return r
}

// Acknowledge removes the request and returns it so the caller can trigger
// the matching floor transfer.
func (q *Queue) Acknowledge(id string) (FloorRequest, bool) {
	return q.take(id)
}

// Dismiss removes the request with no side effect.
func (q *Queue) Dismiss(id string) bool {
	_, ok := q.take(id)
	return ok
}

func (q *Queue) take(id string) (FloorRequest, bool) {
	for i, r := range q.reqs {
		if r.ID == id {
			q.reqs = append(q.reqs[:i], q.reqs[i+1:]...)
			return r, true
		}
	}
	return FloorRequest{}, false
}

// List returns a copy of the pending requests in insertion order.
func (q *Queue) List() []FloorRequest {
	out := make([]FloorRequest, len(q.reqs))
	copy(out, q.reqs)
	return out
}

// Clear drops all pending requests.
func (q *Queue) Clear() { q.reqs = nil }
