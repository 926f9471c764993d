package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier accepts messages for best-effort delivery. Implementations must
// not block the caller on delivery.
type Notifier interface {
	Notify(msg notify.Message)
}

// mailer fills in the data every template shares before handing a message
// to the notifier.
type mailer struct {
	notifier    Notifier
	frontendURL string
}

func (m mailer) send(to, template string, data map[string]any) {
	if m.notifier == nil || to == "" {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["frontendUrl"] = m.frontendURL
	m.notifier.Notify(notify.Message{To: to, Template: template, Data: data})
}

func (m mailer) admin(template string, data map[string]any) {
	if m.notifier == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["frontendUrl"] = m.frontendURL
	m.notifier.Notify(notify.Message{Template: template, Data: data, Admin: true})
}

// repoErr translates repository sentinels into client-facing errors.
func repoErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return apperr.NotFound(notFound)
	default:
		return apperr.Internal("Database operation failed", err)
	}
}

func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + what + " id")
	}
	return oid, nil
}

func parseIDs(ids []string, what string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseID(id, what)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func boolPtr(b bool) *bool { return &b }

// keyedMutex serializes work per key. Entries are dropped once no caller
// holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free or ctx is done, and returns the unlock func.
func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	release := func() {
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() {
			e.mu.Unlock()
			release()
		}, nil
	case <-ctx.Done():
		// The pending Lock still completes; hand it straight back.
		go func() {
			<-acquired
			e.mu.Unlock()
			release()
		}()
		return nil, apperr.Internal("Timed out waiting for booking lock", ctx.Err())
	}
}

func dayString(t time.Time) string {
	return t.Format("January 2, 2006")
}
