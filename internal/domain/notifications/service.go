package notifications

import (
	"context"
	"log/slog"
)

// Mailer sends one plain-text message. The SMTP implementation lives
// in the platform layer; tests use a recording fake.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Enqueuer hands a delivery task to the background worker.
type Enqueuer interface {
	Enqueue(kind string, run func(context.Context) error)
}

// EmailDirectory resolves a recipient's address.
type EmailDirectory interface {
	Email(ctx context.Context, employeeID string) (string, error)
}

// Inserter is the write side of the notification store.
type Inserter interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
}

type Service struct {
	Store  Inserter
	Emails EmailDirectory
	Mailer Mailer
	Queue  Enqueuer
	From   string
}

func NewService(store Inserter, emails EmailDirectory, mailer Mailer, queue Enqueuer, from string) *Service {
	return &Service{Store: store, Emails: emails, Mailer: mailer, Queue: queue, From: from}
}

// Publish fans the event out to each recipient off the request path.
// Delivery is best-effort: failures are logged and never surface to
// the caller.
func (s *Service) Publish(ctx context.Context, event Event) {
	if len(event.Recipients) == 0 {
		return
	}
	s.Queue.Enqueue(event.Kind, func(taskCtx context.Context) error {
		for _, recipientID := range event.Recipients {
			s.deliver(taskCtx, recipientID, event)
		}
		return nil
	})
}

func (s *Service) deliver(ctx context.Context, recipientID string, event Event) {
	_, err := s.Store.Insert(ctx, Notification{
		EmployeeID: recipientID,
		Kind:       event.Kind,
		Subject:    event.Subject,
		Body:       event.Body,
	})
	if err != nil {
		slog.Warn("notification insert failed", "kind", event.Kind, "recipient", recipientID, "err", err)
	}

	address, err := s.Emails.Email(ctx, recipientID)
	if err != nil || address == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.From, address, event.Subject, event.Body); err != nil {
		slog.Warn("notification email failed", "kind", event.Kind, "recipient", recipientID, "err", err)
	}
}
