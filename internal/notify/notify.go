package notify

import "context"

// ChannelSender delivers one message to one subscriber channel.
type ChannelSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Broadcaster posts one message to the public broadcast channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) error
}

// await runs call on its own goroutine and returns early when ctx ends.
// The senders' HTTP clients carry their own timeouts, so an abandoned
// call still terminates shortly after.
func await(ctx context.Context, call func() error) error {
	done := make(chan error, 1)
	go func() { done <- call() }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
