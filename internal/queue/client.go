package queue

import "context"

// Client publishes moderation messages. A nil Client means reviews run inline.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
