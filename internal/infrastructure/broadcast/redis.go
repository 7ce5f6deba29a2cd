// Package broadcast carries change notices between service instances that
// share a store, so a write in one instance invalidates the caches of the
// others. The Redis implementation rides on pub/sub; the Local implementation
// is the single-instance no-op fallback.
package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/neuradash/account-system/internal/core/domain"
)

// RedisBroadcaster publishes and receives ChangeNotices on a shared channel.
// Notices carry the sender's instance id; subscribers are expected to ignore
// their own, since pub/sub echoes a publish back to the publisher.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisBroadcaster(client *redis.Client, channel string, log zerolog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel, log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, notice domain.ChangeNotice) {
	raw, err := json.Marshal(notice)
	if err != nil {
		b.log.Warn().Err(err).Msg("change notice not serialisable")
		return
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.log.Warn().Err(err).Msg("change notice publish failed")
	}
}

// Subscribe delivers notices to fn on a dedicated goroutine until ctx is
// cancelled. Malformed messages are dropped.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, fn func(domain.ChangeNotice)) {
	sub := b.client.Subscribe(ctx, b.channel)

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var notice domain.ChangeNotice
				if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
					b.log.Warn().Err(err).Msg("malformed change notice dropped")
					continue
				}
				fn(notice)
			}
		}
	}()
}

// LocalBroadcaster is the fallback when no shared store is available. With a
// single instance there is no one to notify.
type LocalBroadcaster struct{}

func (LocalBroadcaster) Publish(context.Context, domain.ChangeNotice)          {}
func (LocalBroadcaster) Subscribe(context.Context, func(domain.ChangeNotice)) {}
