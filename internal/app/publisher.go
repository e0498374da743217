// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/evaal"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
)

// Publisher forwards fusion results to the rest of the system.
type Publisher interface {
	PublishReport(r fusion.Report) error
	PublishTrialState(s evaal.TrialState) error
	Close()
}

type mqttPublisher struct {
	client     mqtt.Client
	poseTopic  string
	stateTopic string
}

// NewPublisher connects to broker and publishes on the given topics. An
// empty broker returns a publisher that drops everything.
func NewPublisher(broker, clientID, poseTopic, stateTopic string, log *zap.Logger) (Publisher, error) {
	if broker == "" {
		log.Info("mqtt: no broker configured, publishing disabled")
		return nopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Info("mqtt: connected", zap.String("broker", broker), zap.String("client_id", clientID))

	return &mqttPublisher{client: client, poseTopic: poseTopic, stateTopic: stateTopic}, nil
}

func (p *mqttPublisher) PublishReport(r fusion.Report) error {
	return p.publish(p.poseTopic, r)
}

func (p *mqttPublisher) PublishTrialState(s evaal.TrialState) error {
	if p.stateTopic == "" {
		return nil
	}
	return p.publish(p.stateTopic, s)
}

func (p *mqttPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

func (p *mqttPublisher) Close() { p.client.Disconnect(250) }

type nopPublisher struct{}

func (nopPublisher) PublishReport(fusion.Report) error        { return nil }
func (nopPublisher) PublishTrialState(evaal.TrialState) error { return nil }
func (nopPublisher) Close()                                   {}
