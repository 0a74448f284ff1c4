package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bpoc/internal/daily"
	"bpoc/internal/llm"
	"bpoc/internal/mailer"
	"bpoc/internal/models"
	"bpoc/internal/repositories"
	"bpoc/internal/testhelpers"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVideo struct {
	mu         sync.Mutex
	created    []daily.CreateRoomRequest
	deleted    []string
	presence   int
	createFn   func(ctx context.Context, req daily.CreateRoomRequest) (*daily.Room, error)
	deleteFn   func(ctx context.Context, name string) error
	presenceFn func(ctx context.Context, name string) (*daily.Presence, error)
}

func (f *fakeVideo) CreateRoom(ctx context.Context, req daily.CreateRoomRequest) (*daily.Room, error) {
	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return &daily.Room{ID: "r-" + req.Name, Name: req.Name, URL: "https://bpoc.daily.co/" + req.Name}, nil
}

func (f *fakeVideo) DeleteRoom(ctx context.Context, name string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, name)
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(ctx, name)
	}
	return nil
}

func (f *fakeVideo) GetPresence(ctx context.Context, name string) (*daily.Presence, error) {
	f.mu.Lock()
	f.presence++
	f.mu.Unlock()
	if f.presenceFn != nil {
		return f.presenceFn(ctx, name)
	}
	return &daily.Presence{TotalCount: 1, Data: []daily.PresenceParticipant{{ID: "p1", UserName: "Maria"}}}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, note *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *note)
	return n.err
}

func (n *recordingNotifier) ofType(typ string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, note := range n.sent {
		if note.Type == typ {
			out = append(out, note)
		}
	}
	return out
}

var errProvider = errors.New("provider unavailable")

// fixedNow is the reference clock: 2025-06-01 00:00 UTC.
var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type env struct {
	store    *repositories.Store
	fixture  *testhelpers.Fixture
	video    *fakeVideo
	notifier *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	return &env{
		store:    repositories.NewStore(db),
		fixture:  testhelpers.SeedApplication(t, db),
		video:    &fakeVideo{},
		notifier: &recordingNotifier{},
	}
}

func (e *env) proposalService() *ProposalService {
	svc := NewProposalService(e.store, e.video, e.notifier, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.suffix = func() string { return "abc123" }
	return svc
}

func (e *env) roomService() *RoomService {
	svc := NewRoomService(e.store, e.video, e.notifier, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.suffix = sequentialSuffix()
	return svc
}

// sequentialSuffix yields abc123, abc124, ... so several rooms can coexist
// under the unique provider name index.
func sequentialSuffix() func() string {
	var mu sync.Mutex
	n := 123
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		s := fmt.Sprintf("abc%d", n)
		n++
		return s
	}
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected *services.Error, got %T: %v", err, err)
	require.Equal(t, kind, svcErr.Kind, "message: %s", svcErr.Message)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	// failFor makes sends to these addresses fail.
	failFor map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []any
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, v)
	return nil
}

// fakeLLM answers text prompts with textFn and images with a fixed PNG header.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	textFn  func(prompt string) (string, error)
	imgErr  error
}

func (f *fakeLLM) GenerateText(_ context.Context, prompt string) (*llm.Generation, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	out := "generated: " + prompt
	if f.textFn != nil {
		var err error
		if out, err = f.textFn(prompt); err != nil {
			return nil, err
		}
	}
	return &llm.Generation{Content: out, Metadata: llm.Metadata{Provider: "fake", Model: "fake-1"}}, nil
}

func (f *fakeLLM) GenerateImage(_ context.Context, prompt string) (*llm.Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.imgErr != nil {
		return nil, f.imgErr
	}
	return &llm.Image{Data: []byte("\x89PNG"), MIMEType: "image/png"}, nil
}

func (f *fakeLLM) GetProviderName() string { return "fake" }

// textOnlyLLM hides GenerateImage.
type textOnlyLLM struct{ inner *fakeLLM }

func (t textOnlyLLM) GenerateText(ctx context.Context, prompt string) (*llm.Generation, error) {
	return t.inner.GenerateText(ctx, prompt)
}

func (t textOnlyLLM) GetProviderName() string { return "text-only" }

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (o *fakeObjects) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	if o.objects == nil {
		o.objects = map[string][]byte{}
	}
	o.objects[key] = data
	return key, nil
}

type fakeRenderer struct {
	html []string
	err  error
}

func (r *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	r.html = append(r.html, html)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 fake"), nil
}
