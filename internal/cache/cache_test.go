package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestClient connects to the test Valkey (DB 15) and skips the test when
// it is not running. Cached pages are cleared afterwards.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestConnectValkey(t *testing.T) {
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	t.Run("unreachable server", func(t *testing.T) {
		if _, err := ConnectValkey("localhost", "1", ""); err == nil {
			t.Error("expected an error for an unreachable server")
		}
	})

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("Valkey not reachable: %v", err)
	}
	client.Close()
}

func TestPageCache(t *testing.T) {
	pc := NewPageCache(newTestClient(t), time.Minute)
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		if data, ok := pc.Get(ctx, "2003/bienvenue"); ok || data != nil {
			t.Fatalf("cold cache returned (%q, %v)", data, ok)
		}

		html := []byte("<html><body>Bienvenue</body></html>")
		pc.Set(ctx, "2003/bienvenue", html)

		data, ok := pc.Get(ctx, "2003/bienvenue")
		if !ok || !bytes.Equal(data, html) {
			t.Errorf("after Set: got (%q, %v)", data, ok)
		}
	})

	t.Run("save invalidates its page", func(t *testing.T) {
		pc.Set(ctx, "2004/plage", []byte("avant la modification"))
		pc.InvalidatePage(ctx, "2004/plage")
		if _, ok := pc.Get(ctx, "2004/plage"); ok {
			t.Error("page still cached after invalidation")
		}
	})

	t.Run("latest listing invalidates under its own key", func(t *testing.T) {
		pc.Set(ctx, LatestKey(), []byte(`[{"title":"x"}]`))
		pc.InvalidateLatest(ctx)
		if _, ok := pc.Get(ctx, LatestKey()); ok {
			t.Error("latest payload still cached")
		}
	})

	t.Run("full clear sweeps every page", func(t *testing.T) {
		keys := []string{"2001/un", "2002/deux", "2003/trois"}
		for _, k := range keys {
			pc.Set(ctx, k, []byte(k))
		}
		pc.InvalidateAll(ctx)
		for _, k := range keys {
			if _, ok := pc.Get(ctx, k); ok {
				t.Errorf("%q survived InvalidateAll", k)
			}
		}
	})
}

func TestNewPageCache_ZeroTTLUsesDefault(t *testing.T) {
	pc := NewPageCache(newTestClient(t), 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("ttl = %v, want %v", pc.ttl, DefaultPageTTL)
	}
}

func TestCommentFeed_RoundTrip(t *testing.T) {
	feed := NewCommentFeed(newTestClient(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := feed.Subscribe(ctx, "2003/bienvenue")

	// Give the subscription a moment to register before publishing.
	time.Sleep(100 * time.Millisecond)
	feed.Publish(ctx, "2003/bienvenue", map[string]string{"content": "bonjour"})

	select {
	case msg, ok := <-events:
		if !ok {
			t.Fatal("feed closed before delivering")
		}
		var payload map[string]string
		if err := json.Unmarshal(msg, &payload); err != nil {
			t.Fatalf("event is not JSON: %v", err)
		}
		if payload["content"] != "bonjour" {
			t.Errorf("payload = %v", payload)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for comment event")
	}
}
