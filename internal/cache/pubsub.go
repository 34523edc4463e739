// pubsub.go carries the realtime comment feed over Valkey pub/sub. Each
// article key gets its own channel; subscribers receive new comments as JSON
// without polling.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const commentChannelPrefix = "comments:"

// CommentFeed publishes and subscribes to per-article comment events.
type CommentFeed struct {
	client *redis.Client
}

// NewCommentFeed creates a comment feed over the given Valkey client.
func NewCommentFeed(client *redis.Client) *CommentFeed {
	return &CommentFeed{client: client}
}

// Publish broadcasts a new comment to the article's channel. Failures are
// logged and swallowed: the comment is already persisted and the feed is
// best-effort.
func (f *CommentFeed) Publish(ctx context.Context, articleKey string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("comment feed marshal error", "key", articleKey, "error", err)
		return
	}
	if err := f.client.Publish(ctx, commentChannelPrefix+articleKey, data).Err(); err != nil {
		slog.Warn("comment feed publish error", "key", articleKey, "error", err)
	}
}

// Subscribe returns a channel of raw JSON comment events for one article key.
// The subscription closes when ctx is cancelled.
func (f *CommentFeed) Subscribe(ctx context.Context, articleKey string) <-chan []byte {
	sub := f.client.Subscribe(ctx, commentChannelPrefix+articleKey)
	out := make(chan []byte)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
