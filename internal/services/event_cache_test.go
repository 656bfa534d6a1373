package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nightmarket/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEventCache(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisEventCache(client, 5*time.Minute)
	ctx := context.Background()

	ev := &models.Event{
		ID:           "ev1",
		Title:        "Night Market Vol. 3",
		Date:         fixedNow,
		Price:        500000,
		TotalTickets: 200,
		SoldTickets:  12,
		Status:       models.EventActive,
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	mock.ExpectGet("event:ev1").RedisNil()
	mock.ExpectSet("event:ev1", data, 5*time.Minute).SetVal("OK")
	mock.ExpectGet("event:ev1").SetVal(string(data))
	mock.ExpectDel("event:ev1").SetVal(1)

	_, err = cache.Get(ctx, "ev1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, ev))

	got, err := cache.Get(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, ev.Title, got.Title)
	assert.Equal(t, ev.SoldTickets, got.SoldTickets)
	assert.True(t, ev.Date.Equal(got.Date))

	require.NoError(t, cache.Invalidate(ctx, "ev1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisEventCache_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisEventCache(client, time.Minute)
	ctx := context.Background()

	mock.ExpectGet("event:ev1").SetErr(errors.New("connection reset"))
	mock.ExpectGet("event:ev2").SetVal("{not json")

	_, err := cache.Get(ctx, "ev1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = cache.Get(ctx, "ev2")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
