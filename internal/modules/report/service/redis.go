package service

import (
	"context"
	"time"

	"paper_bot/internal/models"

	"github.com/bytedance/sonic"
	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Redis публикует JSON события в канал и держит хвост последних событий в <channel>:recent.
type Redis struct {
	client  *goredis.Client
	channel string
	keep    int64
}

func NewRedis(client *goredis.Client, channel string, keep int64) *Redis {
	return &Redis{client: client, channel: channel, keep: keep}
}

// DialRedis - клиент с проверкой соединения.
func DialRedis(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) RecentKey() string { return r.channel + ":recent" }

func (r *Redis) Send(ctx context.Context, e models.Event) error {
	payload, err := sonic.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	pipe := r.client.Pipeline()
	pipe.Publish(ctx, r.channel, payload)
	if r.keep > 0 {
		pipe.LPush(ctx, r.RecentKey(), payload)
		pipe.LTrim(ctx, r.RecentKey(), 0, r.keep-1)
	}
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "redis publish")
}
