package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/database"
)

var testCtx = context.Background()

type sent struct {
	to   string
	kind model.NotificationType
	p    Payload
}

// recordingNotifier 同步记录所有通知
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingNotifier) Notify(to string, kind model.NotificationType, p Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{to: to, kind: kind, p: p})
}

func (r *recordingNotifier) to(userID string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []sent
	for _, s := range r.sent {
		if s.to == userID {
			res = append(res, s)
		}
	}
	return res
}

func newTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestServices(t testing.TB) (*Services, *recordingNotifier, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	rec := &recordingNotifier{}
	return New(db, rec, auth.NewManager("test-secret", "tieba-test", time.Hour)), rec, db
}

func register(t testing.TB, svc *Services, name string) *model.User {
	t.Helper()
	u, err := svc.Users.Register(testCtx, RegisterInput{Username: name, Password: "secret1"})
	require.NoError(t, err)
	return u
}
