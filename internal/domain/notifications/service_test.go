package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncQueue runs tasks inline so tests observe deliveries directly.
type syncQueue struct{}

func (syncQueue) Enqueue(kind string, run func(context.Context) error) {
	_ = run(context.Background())
}

type fakeInserter struct {
	inserted []Notification
	fail     bool
}

func (f *fakeInserter) Insert(ctx context.Context, n Notification) (Notification, error) {
	if f.fail {
		return Notification{}, fmt.Errorf("insert failed")
	}
	f.inserted = append(f.inserted, n)
	return n, nil
}

type fakeEmails map[string]string

func (f fakeEmails) Email(ctx context.Context, employeeID string) (string, error) {
	address, ok := f[employeeID]
	if !ok {
		return "", fmt.Errorf("unknown employee")
	}
	return address, nil
}

type sentMail struct {
	To, Subject string
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject})
	return nil
}

func TestPublishFansOutToRecipients(t *testing.T) {
	store := &fakeInserter{}
	mailer := &fakeMailer{}
	svc := NewService(store, fakeEmails{
		"chef": "chef@mairie.fr",
		"rh":   "rh@mairie.fr",
	}, mailer, syncQueue{}, "conges@mairie.fr")

	svc.Publish(context.Background(), Event{
		Kind:       KindNewRequest,
		Recipients: []string{"chef", "rh"},
		Subject:    "Nouvelle demande de conges",
		Body:       "Une demande attend votre validation.",
	})

	require.Len(t, store.inserted, 2)
	assert.Equal(t, "chef", store.inserted[0].EmployeeID)
	assert.Equal(t, KindNewRequest, store.inserted[0].Kind)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "chef@mairie.fr", mailer.sent[0].To)
}

func TestPublishWithoutRecipientsIsNoop(t *testing.T) {
	store := &fakeInserter{}
	mailer := &fakeMailer{}
	svc := NewService(store, fakeEmails{}, mailer, syncQueue{}, "conges@mairie.fr")

	svc.Publish(context.Background(), Event{Kind: KindFinalDecision})

	assert.Empty(t, store.inserted)
	assert.Empty(t, mailer.sent)
}

func TestPublishSurvivesMailerFailure(t *testing.T) {
	store := &fakeInserter{}
	mailer := &fakeMailer{fail: true}
	svc := NewService(store, fakeEmails{"chef": "chef@mairie.fr"}, mailer, syncQueue{}, "conges@mairie.fr")

	svc.Publish(context.Background(), Event{
		Kind:       KindLevelProgress,
		Recipients: []string{"chef"},
		Subject:    "Demande a valider",
	})

	// The in-app notification still lands.
	require.Len(t, store.inserted, 1)
}

func TestPublishSkipsMailWithoutAddress(t *testing.T) {
	store := &fakeInserter{}
	mailer := &fakeMailer{}
	svc := NewService(store, fakeEmails{}, mailer, syncQueue{}, "conges@mairie.fr")

	svc.Publish(context.Background(), Event{
		Kind:       KindCETDecision,
		Recipients: []string{"ghost"},
		Subject:    "Decision CET",
	})

	require.Len(t, store.inserted, 1)
	assert.Empty(t, mailer.sent)
}

func TestPublishSurvivesInsertFailure(t *testing.T) {
	store := &fakeInserter{fail: true}
	mailer := &fakeMailer{}
	svc := NewService(store, fakeEmails{"chef": "chef@mairie.fr"}, mailer, syncQueue{}, "conges@mairie.fr")

	svc.Publish(context.Background(), Event{
		Kind:       KindNewRequest,
		Recipients: []string{"chef"},
		Subject:    "Nouvelle demande",
	})

	// Email delivery is still attempted.
	require.Len(t, mailer.sent, 1)
}
