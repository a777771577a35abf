// internal/app/system/push/pusher.go
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/dalemusser/circles/internal/domain/models"
)

// ErrSubscriptionGone is returned when the push service reports the
// endpoint no longer exists. Callers should drop the subscription.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Pusher delivers an encrypted payload to one device endpoint.
type Pusher interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) error
}

// WebPusher sends Web Push messages signed with the application's VAPID
// key pair.
type WebPusher struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string // mailto: contact required by push services
	TTL             int    // seconds the push service may hold the message
}

// NewWebPusher creates a VAPID Web Push sender.
func NewWebPusher(publicKey, privateKey, subscriber string) *WebPusher {
	return &WebPusher{
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		Subscriber:      subscriber,
		TTL:             3600,
	}
}

// Send pushes the payload to the subscription's endpoint.
func (p *WebPusher) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}
	opts := &webpush.Options{
		Subscriber:      p.Subscriber,
		VAPIDPublicKey:  p.VAPIDPublicKey,
		VAPIDPrivateKey: p.VAPIDPrivateKey,
		TTL:             p.TTL,
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, opts)
	if err != nil {
		return fmt.Errorf("web push send: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service status %d", resp.StatusCode)
	}
	return nil
}
