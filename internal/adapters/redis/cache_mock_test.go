package redisad_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	redisad "vonage_relay/internal/adapters/redis"
)

func TestCache_GetPropagatesServerErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redisad.NewFromClient(db)
	boom := errors.New("LOADING Redis is loading the dataset in memory")

	mock.ExpectGet("relay:room:r1").SetErr(boom)

	var out map[string]any
	ok, err := c.Get(context.Background(), "room:r1", &out)
	require.False(t, ok)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetRejectsCorruptValue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redisad.NewFromClient(db)

	mock.ExpectGet("relay:room:r1").SetVal("{not json")

	var out map[string]any
	ok, err := c.Get(context.Background(), "room:r1", &out)
	require.False(t, ok)
	require.Error(t, err)
}

func TestCache_DelPropagatesErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redisad.NewFromClient(db)

	mock.ExpectDel("relay:events:m-1:50").SetErr(errors.New("READONLY"))

	require.Error(t, c.Del(context.Background(), "events:m-1:50"))
	require.NoError(t, mock.ExpectationsWereMet())
}
