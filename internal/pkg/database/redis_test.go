package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisClient_ConnectionError(t *testing.T) {
	client, err := NewRedisClient(models.RedisConfig{Host: "127.0.0.1", Port: 1})

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisClient_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}
	ctx := context.Background()

	mock.ExpectSet("test:key", "test-value", time.Hour).SetVal("OK")

	assert.NoError(t, client.Set(ctx, "test:key", "test-value", time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Get(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		want    string
		wantErr error
	}{
		{
			name:  "found",
			setup: func(mock redismock.ClientMock) { mock.ExpectGet("k").SetVal("v") },
			want:  "v",
		},
		{
			name:    "missing",
			setup:   func(mock redismock.ClientMock) { mock.ExpectGet("k").RedisNil() },
			wantErr: redis.Nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			client := &RedisClient{Client: db}
			tt.setup(mock)

			got, err := client.Get(context.Background(), "k")

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisClient_SetNX(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}
	ctx := context.Background()

	mock.ExpectSetNX("lock", "token", 5*time.Second).SetVal(true)
	mock.ExpectSetNX("lock", "other", 5*time.Second).SetVal(false)

	ok, err := client.SetNX(ctx, "lock", "token", 5*time.Second)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "lock", "other", 5*time.Second)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}

	mock.ExpectDel("k").SetErr(errors.New("down"))

	assert.Error(t, client.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
