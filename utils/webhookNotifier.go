package utils

import (
	"context"
	"fmt"
	"internhub/models"
	"internhub/services"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newEventID returns a sortable id stamped with at.
func newEventID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// WebhookEvent is the JSON body posted for every event.
type WebhookEvent struct {
	ID           string             `json:"id"`
	Kind         services.EventKind `json:"kind"`
	InternshipID uint               `json:"internshipId"`
	Status       models.Status      `json:"status"`
	StudentID    uint               `json:"studentId"`
	InstructorID *uint              `json:"instructorId"`
	SectorID     uint               `json:"sectorId"`
	ActorID      uint               `json:"actorId"`
	Comment      string             `json:"comment,omitempty"`
	OccurredAt   time.Time          `json:"occurredAt"`
}

// WebhookNotifier posts events to an external endpoint, retrying server errors.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")
	return &WebhookNotifier{client: client, url: url}
}

func (n *WebhookNotifier) Notify(ctx context.Context, e services.Event) error {
	in := e.Internship
	body := WebhookEvent{
		ID:           newEventID(e.OccurredAt),
		Kind:         e.Kind,
		InternshipID: in.ID,
		Status:       in.Status,
		StudentID:    in.StudentID,
		InstructorID: in.InstructorID,
		SectorID:     in.SectorID,
		ActorID:      e.ActorID,
		Comment:      e.Comment,
		OccurredAt:   e.OccurredAt,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Id", body.ID).
		SetBody(body).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", e.Kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: status %d: %s", e.Kind, resp.StatusCode(), resp.String())
	}
	return nil
}
