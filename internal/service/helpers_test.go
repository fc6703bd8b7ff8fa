package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/events"
	"github.com/phrazzld/magicphoto-api/internal/platform/memory"
	"github.com/phrazzld/magicphoto-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryStore() *memory.Store {
	return memory.NewStore(testLogger())
}

func seedUser(t *testing.T, s *memory.Store, points int) *domain.User {
	t.Helper()
	user, err := domain.NewUser(domain.OpenIDFromCode(uuid.NewString()), "tester", DefaultAvatarURL, points)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// handlerFunc adapts a function to events.EventHandler.
type handlerFunc func(ctx context.Context, event *events.TaskRequestEvent) error

func (f handlerFunc) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	return f(ctx, event)
}

func newEmitter(handler handlerFunc) *events.InMemoryEventEmitter {
	emitter := events.NewInMemoryEventEmitter(testLogger())
	if handler != nil {
		emitter.RegisterHandler(handler)
	}
	return emitter
}

// fakeJWT implements auth.JWTService.
type fakeJWT struct {
	err error
}

func (f *fakeJWT) GenerateToken(ctx context.Context, userID uuid.UUID, openID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID.String(), nil
}

func (f *fakeJWT) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return nil, errors.New("not implemented")
}
