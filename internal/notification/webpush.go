package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrTargetGone marks a delivery target the push service reports as
// permanently invalid (expired or unsubscribed). The caller must remove it;
// retrying is pointless.
var ErrTargetGone = errors.New("push target gone")

// Target is one web-push subscription.
type Target struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

type Sender interface {
	Send(ctx context.Context, target Target, payload []byte) error
}

type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	vapid VAPIDConfig
	ttl   int
}

func NewWebPushSender(vapid VAPIDConfig) *WebPushSender {
	return &WebPushSender{vapid: vapid, ttl: 12 * 3600}
}

func (s *WebPushSender) Send(ctx context.Context, target Target, payload []byte) error {
	sub := &webpush.Subscription{
		Endpoint: target.Endpoint,
		Keys: webpush.Keys{
			P256dh: target.P256dh,
			Auth:   target.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &webpush.Options{
		Subscriber:      s.vapid.Subscriber,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status %d", ErrTargetGone, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push delivery failed: status %d", resp.StatusCode)
	}
	return nil
}
