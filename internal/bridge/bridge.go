package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"stakecast/internal/model"
)

// Announcer is the dispatcher capability the bridges depend on.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Bridge connects normalized chain events to the notification dispatcher.
type Bridge interface {
	HandleEvent(ctx context.Context, ev model.ChainEvent) error
}

// Direct hands the rendered event text straight to the dispatcher.
type Direct struct {
	dispatcher Announcer
}

func NewDirect(dispatcher Announcer) *Direct {
	return &Direct{dispatcher: dispatcher}
}

func (b *Direct) HandleEvent(ctx context.Context, ev model.ChainEvent) error {
	return b.dispatcher.Announce(ctx, ev.Text)
}

// Runtime is the external conversational-agent surface the mediated
// bridge depends on.
type Runtime interface {
	ComposeResponse(ctx context.Context, input, conversationID string) (string, error)
}

// Mediated submits each event as an input turn to the agent runtime and
// announces the composed response. Every submission carries the same
// synthetic conversation identity so the runtime keeps context across
// repeated chain events.
type Mediated struct {
	runtime        Runtime
	dispatcher     Announcer
	conversationID string
}

func NewMediated(runtime Runtime, dispatcher Announcer) *Mediated {
	return &Mediated{
		runtime:        runtime,
		dispatcher:     dispatcher,
		conversationID: uuid.NewString(),
	}
}

func (b *Mediated) HandleEvent(ctx context.Context, ev model.ChainEvent) error {
	params, err := json.Marshal(ev.Params)
	if err != nil {
		return fmt.Errorf("encode event parameters: %w", err)
	}

	prompt := fmt.Sprintf(
		"Received a smart contract event %s with the following parameters:\n\n%s\n\nPlease announce this update to users on all platforms.",
		ev.Kind, params,
	)

	reply, err := b.runtime.ComposeResponse(ctx, prompt, b.conversationID)
	if err != nil {
		return fmt.Errorf("compose response: %w", err)
	}
	return b.dispatcher.Announce(ctx, reply)
}
