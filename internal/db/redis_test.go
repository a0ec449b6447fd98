package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/agentauth/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedis_SelectsDB(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), &config.Config{RedisAddr: mr.Addr(), RedisDB: 2})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.DB(2).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), &config.Config{RedisAddr: addr})
	assert.ErrorContains(t, err, "ping redis")
}

func TestNewRedis_BadTLSConfig(t *testing.T) {
	_, err := NewRedis(context.Background(), &config.Config{
		RedisAddr:       "localhost:0",
		RedisTLSEnabled: true,
		RedisTLSCert:    "/nonexistent/cert.pem",
	})
	assert.ErrorContains(t, err, "REDIS_TLS_KEY")
}

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "parse db config")
}
