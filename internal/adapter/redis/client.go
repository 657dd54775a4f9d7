package redis

import (
	"context"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

// NewClient connects to the server at url and checks it answers.
func NewClient(ctx context.Context, url string) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
