// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/evaal"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
)

// FormatReport renders a fused pose as one console line.
func FormatReport(r fusion.Report) string {
	uwb := ""
	if r.UWBCorrected {
		uwb = " +UWB"
	}
	return fmt.Sprintf("[POSE]  t=%9.3f  X=%8.2f  Y=%8.2f  YAW=%6.3f  src=%s%s",
		r.Timestamp, r.Pose.X, r.Pose.Y, r.Pose.Yaw, r.Source, uwb)
}

// FormatTrialState renders a trial state as one console line.
func FormatTrialState(s evaal.TrialState) string {
	return fmt.Sprintf("[TRIAL] t=%9.3f  remaining=%8.3f  horizon=%.3f  pos=%s",
		s.TrialTime, s.Remaining, s.Horizon, s.Position)
}

// RunConsoleMQTT prints every fused pose and trial state to out until ctx
// is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer, log *zap.Logger) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Info("console: connected to MQTT broker", zap.String("broker", cfg.MQTTBroker))

	poseToken := client.Subscribe(cfg.TopicPoseFused, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r fusion.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Warn("console: pose unmarshal error", zap.Error(err))
			return
		}
		fmt.Fprintln(out, FormatReport(r))
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Info("console: subscribed", zap.String("topic", cfg.TopicPoseFused))

	if cfg.TopicTrialState != "" {
		stateToken := client.Subscribe(cfg.TopicTrialState, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s evaal.TrialState
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Warn("console: trial state unmarshal error", zap.Error(err))
				return
			}
			fmt.Fprintln(out, FormatTrialState(s))
		})
		stateToken.Wait()
		if stateToken.Error() != nil {
			return stateToken.Error()
		}
		log.Info("console: subscribed", zap.String("topic", cfg.TopicTrialState))
	}

	<-ctx.Done()

	log.Info("console: shutting down")
	client.Disconnect(250)
	return nil
}
