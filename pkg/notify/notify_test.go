package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []Email
	err   error
	block chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, email Email) (string, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return "id", m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop(), DispatcherOptions{Workers: 2, QueueSize: 10})

	for i := 0; i < 5; i++ {
		assert.True(t, d.Dispatch(Email{To: []string{"a@b.c"}, Subject: "s"}))
	}
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 5, mailer.count())
	assert.False(t, d.Dispatch(Email{To: []string{"a@b.c"}}), "closed dispatcher rejects")
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	mailer := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(mailer, zerolog.Nop(), DispatcherOptions{Workers: 1, QueueSize: 1})

	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Dispatch(Email{To: []string{"a@b.c"}}) {
			accepted++
		}
	}
	// one in flight at most, one queued
	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, accepted, 1)

	close(mailer.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, accepted, mailer.count())
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, zerolog.Nop(), DispatcherOptions{})
	d.Dispatch(Email{To: []string{"a@b.c"}})
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, mailer.count())
}

func TestDispatcher_JobBuildsOnWorker(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zerolog.Nop(), DispatcherOptions{Workers: 1, SendTimeout: time.Second})

	release := make(chan struct{})
	start := time.Now()
	ok := d.DispatchJob("slow lookup", func(ctx context.Context) (Email, error) {
		<-release
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return Email{To: []string{"a@b.c"}, Subject: "built"}, nil
	})
	require.True(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "DispatchJob returns before the job runs")

	assert.True(t, d.DispatchJob("broken", func(context.Context) (Email, error) {
		return Email{}, errors.New("lookup failed")
	}))

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, mailer.count(), "a job that fails to build sends nothing")
}

func TestResendMailer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		var got Email
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, []string{"owner@example.com"}, got.To)
		assert.Equal(t, "visitor@example.com", got.ReplyTo)
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_key", srv.URL)
	id, err := m.Send(context.Background(), Email{To: []string{"owner@example.com"}, ReplyTo: "visitor@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)

	_, err = m.Send(context.Background(), Email{})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestResendMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewResendMailer("k", srv.URL).Send(context.Background(), Email{To: []string{"x@y.z"}})
	assert.Error(t, err)
}

func TestRSVPNotificationEmail(t *testing.T) {
	yes := true
	n := RSVPNotification{
		EventName:        "Léa & Marc",
		GuestName:        "Ana & Bo",
		Name2:            "Bo",
		AskPartner:       true,
		Attending:        true,
		PartnerAttending: &yes,
		Message:          "<b>hâte</b>",
		RespondedAt:      time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
	}
	email, err := n.Email("rsvp@example.com", "org@example.com")
	require.NoError(t, err)
	assert.Contains(t, email.Subject, "Ana & Bo")
	assert.Contains(t, email.Subject, "Présent(e)")
	assert.Contains(t, email.HTML, "Bo présent(e) ?")
	assert.Contains(t, email.HTML, "✅ Oui")
	assert.Contains(t, email.HTML, "mardi 3 mars 2026")
	assert.NotContains(t, email.HTML, "<b>hâte</b>")
}

func TestContactEmails(t *testing.T) {
	c := ContactMessage{Name: "Jo &amp; Co", Email: "jo@example.com", Message: "Bonjour à tous", Locale: "it"}

	owner, err := c.OwnerEmail("from@example.com", "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", owner.ReplyTo)
	assert.Contains(t, owner.HTML, "Jo &amp; Co")
	assert.NotContains(t, owner.HTML, "&amp;amp;")

	conf, err := c.ConfirmationEmail("from@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Conferma di ricezione del tuo messaggio", conf.Subject)
	assert.Contains(t, conf.HTML, `lang="it"`)

	c.Locale = "de"
	conf, err = c.ConfirmationEmail("from@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Confirmation de réception de votre message", conf.Subject)
}
