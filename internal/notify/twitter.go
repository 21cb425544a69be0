package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"

	"stakecast/internal/config"
)

// TwitterBroadcaster posts announcements to the public Twitter account.
type TwitterBroadcaster struct {
	client *twitter.Client
}

func NewTwitterBroadcaster(creds config.TwitterConfig, timeout time.Duration) (*TwitterBroadcaster, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("twitter credentials are incomplete")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	oauthConfig := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout
	return &TwitterBroadcaster{client: twitter.NewClient(httpClient)}, nil
}

// Broadcast posts one tweet with the message text.
func (t *TwitterBroadcaster) Broadcast(ctx context.Context, text string) error {
	return await(ctx, func() error {
		_, _, err := t.client.Statuses.Update(text, nil)
		return err
	})
}
