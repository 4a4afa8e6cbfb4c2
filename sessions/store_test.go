// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostafamaarof/AI-Survey/answers"
	"github.com/mostafamaarof/AI-Survey/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, RedisConfig{Prefix: "test:", TTL: time.Hour, LockTTL: time.Minute}), mr
}

func sampleSession() *Session {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	token := "invite-1"
	fields := models.DefaultInstitutionFields()

	return &Session{
		ID: "sess-1",
		Survey: models.SurveyPayload{
			Survey: models.Survey{ID: "s1", Title: "AI in Audit", IsActive: true, CreatedAt: created, InstitutionFields: &fields},
			Questions: []models.Question{
				{ID: "q1", Code: "Q1", Section: "Org", Prompt: "Name", QType: models.QTypeText, Options: []models.Option{}},
				{ID: "q7", Code: "Q7", Section: "Usage", Prompt: "Tools", QType: models.QTypeMulti,
					Options: []models.Option{{ID: "o1", Label: "ChatGPT", Value: "chatgpt"}, {ID: "o2", Label: "Other", Value: "other", OrderIndex: 1}}},
			},
		},
		Token: &token,
		State: answers.NewState().
			SetValue("Q1", answers.Text("Office")).
			SetValue("Q7", answers.Choices("other")).
			SetOtherText("Q7", "custom").
			WithErrors(answers.Errors{"Q7": ""}),
		Current:   1,
		CreatedAt: created,
	}
}

func TestStores(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			s := sampleSession()
			require.NoError(t, store.Save(ctx, s))

			got, err := store.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s, got)

			got.Current = 0
			got.State = got.State.SetValue("Q1", answers.Text("Renamed"))
			require.NoError(t, store.Save(ctx, got))

			again, err := store.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, again.Current)
			assert.Equal(t, answers.Text("Renamed"), again.State.Values["Q1"])

			require.NoError(t, store.Delete(ctx, s.ID))
			_, err = store.Get(ctx, s.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestAcquireSubmit(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			release, err := store.AcquireSubmit(ctx, "sess-1")
			require.NoError(t, err)

			_, err = store.AcquireSubmit(ctx, "sess-1")
			assert.ErrorIs(t, err, ErrSubmitLocked)

			other, err := store.AcquireSubmit(ctx, "sess-2")
			require.NoError(t, err)
			other()

			release()
			release2, err := store.AcquireSubmit(ctx, "sess-1")
			require.NoError(t, err)
			release2()
		})
	}
}

func TestSaveAfterSubmitted(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// an edit loaded before the submit finished
			stale := sampleSession()
			require.NoError(t, store.Save(ctx, stale))

			done := sampleSession()
			done.Submitted = true
			done.RespondentID = "r-1"
			require.NoError(t, store.Save(ctx, done))

			stale.State = stale.State.SetValue("Q1", answers.Text("Late edit"))
			assert.ErrorIs(t, store.Save(ctx, stale), ErrSubmitted)

			got, err := store.Get(ctx, stale.ID)
			require.NoError(t, err)
			assert.True(t, got.Submitted)
			assert.Equal(t, "r-1", got.RespondentID)
			assert.Equal(t, answers.Text("Office"), got.State.Values["Q1"])

			require.NoError(t, store.Delete(ctx, stale.ID))
			assert.NoError(t, store.Save(ctx, sampleSession()))
		})
	}
}

func TestRedisStoreReleaseKeepsNewerLock(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	stale, err := store.AcquireSubmit(ctx, "sess-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	current, err := store.AcquireSubmit(ctx, "sess-1")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("test:lock:sess-1"))
	_, err = store.AcquireSubmit(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSubmitLocked)

	current()
	assert.False(t, mr.Exists("test:lock:sess-1"))
}

func TestRedisStoreKeysAndTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.True(t, mr.Exists("test:sess-1"))
	ttl := mr.TTL("test:sess-1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreLockExpires(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.AcquireSubmit(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:sess-1"))

	mr.FastForward(2 * time.Minute)
	release, err := store.AcquireSubmit(ctx, "sess-1")
	require.NoError(t, err)
	release()
	assert.False(t, mr.Exists("test:lock:sess-1"))
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("test:broken", "{not json"))

	_, err := store.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	_, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
