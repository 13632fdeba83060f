package stream

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"fleethub/internal/ingest"
	"fleethub/internal/logs"
	"fleethub/internal/metrics"
)

// Options holds the broker connection settings.
type Options struct {
	Broker   string
	Topic    string
	ClientID string
}

// envelope is the wire shape one broker message carries: the transport's
// system properties and sequence identity around the JSON telemetry body.
type envelope struct {
	SequenceNumber   string            `json:"sequenceNumber"`
	EnqueuedAt       time.Time         `json:"enqueuedAt"`
	SystemProperties map[string]string `json:"systemProperties"`
	Body             json.RawMessage   `json:"body"`
}

// Consumer subscribes to the telemetry topic and feeds each message to the
// ingestion pipeline. Delivery guarantees are the broker's; the pipeline's
// idempotent append absorbs redelivery.
type Consumer struct {
	client   mqtt.Client
	topic    string
	pipeline *ingest.Pipeline
	log      *logrus.Entry
}

func NewConsumer(o Options, p *ingest.Pipeline) *Consumer {
	c := &Consumer{
		topic:    o.Topic,
		pipeline: p,
		log:      logs.Logger.WithField("component", "stream"),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	opts.OnConnect = func(cl mqtt.Client) {
		c.log.Infof("connected to %s, subscribing to %s", o.Broker, o.Topic)
		if tok := cl.Subscribe(o.Topic, 1, c.handle); tok.Wait() && tok.Error() != nil {
			c.log.WithError(tok.Error()).Errorf("subscribe %s failed", o.Topic)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		c.log.WithError(err).Warn("broker connection lost")
	}

	c.client = mqtt.NewClient(opts)
	return c
}

// Start connects to the broker; the subscription happens in OnConnect so it
// survives reconnects.
func (c *Consumer) Start() error {
	if tok := c.client.Connect(); tok.Wait() && tok.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	return nil
}

func (c *Consumer) Stop() {
	if c.client.IsConnected() {
		if tok := c.client.Unsubscribe(c.topic); tok.Wait() && tok.Error() != nil {
			c.log.WithError(tok.Error()).Warnf("unsubscribe %s failed", c.topic)
		}
		c.client.Disconnect(250)
	}
}

func (c *Consumer) handle(_ mqtt.Client, msg mqtt.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		c.log.Warnf("undecodable event envelope on %s: %v", msg.Topic(), err)
		metrics.IngestEvents.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return
	}
	c.pipeline.Handle(ingest.Event{
		SequenceNumber:   env.SequenceNumber,
		EnqueuedAt:       env.EnqueuedAt,
		SystemProperties: env.SystemProperties,
		Body:             env.Body,
	})
}
