// Package dispatch pushes schedule-change events to site controllers
// over MQTT. Controllers subscribe to their own topic and re-fetch the
// effective plan whenever an event arrives.
package dispatch

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

const publishTimeout = 5 * time.Second

type scheduleChangedEvent struct {
	SiteID    int    `json:"site_id"`
	ChangedAt string `json:"changed_at"`
}

// Publisher implements schedule.Notifier over a single broker
// connection.
type Publisher struct {
	client mqtt.Client
}

var _ schedule.Notifier = (*Publisher)(nil)

func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client}, nil
}

// ScheduleChanged publishes to sites/{id}/schedule. Failures are
// logged and dropped; the mutation already committed and controllers
// re-sync on their next poll anyway.
func (p *Publisher) ScheduleChanged(siteID int) {
	payload, err := json.Marshal(scheduleChangedEvent{
		SiteID:    siteID,
		ChangedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	topic := fmt.Sprintf("sites/%d/schedule", siteID)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("schedule change publish failed")
		return
	}
	log.Debug().Str("topic", topic).Msg("schedule change published")
}

// Close disconnects from the broker, allowing in-flight messages a
// grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
