package gateway

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go/v7"

	"xposure-ticketing/models"
)

// PubNubNotifier publishes admissions on the live scanner channel so
// the door dashboard updates in real time.
type PubNubNotifier struct {
	pn      *pubnub.PubNub
	channel string
}

func NewPubNubNotifier(publishKey, subscribeKey, secretKey, channel string) *PubNubNotifier {
	cfg := pubnub.NewConfigWithUserId(pubnub.UserId("ticket-scanner"))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	cfg.SecretKey = secretKey

	return &PubNubNotifier{
		pn:      pubnub.NewPubNub(cfg),
		channel: channel,
	}
}

func (n *PubNubNotifier) NotifyCheckin(ctx context.Context, ev models.CheckinEvent) error {
	_, _, err := n.pn.Publish().
		Channel(n.channel).
		Message(map[string]any{
			"type":        "checkin",
			"code":        ev.Code,
			"name":        ev.Name,
			"event_title": ev.EventTitle,
			"quantity":    ev.Quantity,
			"scanned_at":  ev.ScannedAt,
		}).
		Execute()
	if err != nil {
		return fmt.Errorf("publish checkin: %w", err)
	}
	return nil
}
