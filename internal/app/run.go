package app

import (
	"context"
	"fmt"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/eventbridge"
	"github.com/vk/nodegrid/internal/flow"
)

// Run loads the graph document, runs it once and logs every card's output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()
	defer a.Close()

	doc, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}

	bridge, err := a.attachBridge(ctx)
	if err != nil {
		return err
	}
	if bridge != nil {
		defer bridge.Close()
	}

	runner, err := flow.NewRunner(ctx, a.cards.Cards(), doc.Connections)
	if err != nil {
		return fmt.Errorf("failed to build flow: %w", err)
	}

	if a.cards.Len() > 0 {
		a.logger.Info("🚀 Starting flow...", "order", runner.Order())
		if err := runner.Run(ctx, a.globals); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		a.logger.Info("🏁 Flow finished.")
	} else {
		a.logger.Warn("No cards found in graph, execution not required.")
	}

	for _, card := range a.cards.Cards() {
		if ctrl := card.Controller(); ctrl != nil {
			a.logger.Info("Card output.", "card_id", card.ID().String(), "type", card.TypeKey(), "output", ctrl.RecentOutput())
		}
	}

	if err := a.saveGraph(ctx, doc); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// attachBridge connects the event bridge when a publisher was injected or
// an MQTT broker is configured. It returns nil when neither is set.
func (a *App) attachBridge(ctx context.Context) (*eventbridge.Bridge, error) {
	pub := a.publisher
	if pub == nil && a.config.MQTTURL != "" {
		mqttPub := eventbridge.NewMQTTPublisher(a.config.MQTTURL, a.config.MQTTClientID)
		if err := mqttPub.Connect(ctx); err != nil {
			mqttPub.Disconnect()
			return nil, fmt.Errorf("connecting to MQTT broker %s: %w", a.config.MQTTURL, err)
		}
		a.logger.Info("Connected to MQTT broker.", "url", a.config.MQTTURL)
		a.mqtt = mqttPub
		pub = mqttPub
	}
	if pub == nil {
		a.logger.Debug("Event bridge disabled.")
		return nil, nil
	}

	bridge := eventbridge.New(pub, a.config.MQTTTopicPrefix)
	n := bridge.Attach(ctx, a.cards.Cards())
	a.logger.Info("Event bridge attached.", "subscriptions", n)
	return bridge, nil
}
