// Package mqtt publishes debounced touch events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"

	"github.com/touchplate/touchplate/internal/touch"
)

// connectRetries bounds how long we wait for the broker's CONNACK.
const connectRetries = 50

// eventPayload is the JSON message published per edge event.
type eventPayload struct {
	Event    string `json:"event"`
	X        int16  `json:"x"`
	Y        int16  `json:"y"`
	RawX     int16  `json:"rawX"`
	RawY     int16  `json:"rawY"`
	Pressure int16  `json:"pressure"`
}

// Publisher maintains one broker connection and publishes touch and
// release events as JSON at QoS 0.
type Publisher struct {
	addr     string
	clientID string
	topic    string
	timeout  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	client *mqtt.Client
	flags  mqtt.PacketFlags
	nextID uint16
}

// NewPublisher configures a publisher; call Connect before publishing.
func NewPublisher(addr, clientID, topic string, timeout time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		addr:     addr,
		clientID: clientID,
		topic:    topic,
		timeout:  timeout,
		logger:   logger,
	}
}

// Connect dials the broker and completes the MQTT handshake.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	p.flags = flags

	conn, err := net.DialTimeout("tcp", p.addr, p.timeout)
	if err != nil {
		return errors.New("mqtt dial " + p.addr + ": " + err.Error())
	}

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			p.logger.Info("mqtt:received message", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	}
	client := mqtt.NewClient(cfg)

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(p.clientID))

	_ = conn.SetDeadline(time.Now().Add(p.timeout))
	if err := client.StartConnect(conn, &varconn); err != nil {
		_ = conn.Close()
		return errors.New("mqtt connect: " + err.Error())
	}
	for i := 0; i < connectRetries && !client.IsConnected(); i++ {
		time.Sleep(100 * time.Millisecond)
		if err := client.HandleNext(); err != nil {
			p.logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
		}
	}
	if !client.IsConnected() {
		_ = conn.Close()
		reason := client.Err()
		if reason == nil {
			reason = errors.New("timed out waiting for CONNACK")
		}
		return errors.New("mqtt connect: " + reason.Error())
	}

	p.conn = conn
	p.client = client
	p.logger.Info("mqtt:connected", slog.String("addr", p.addr), slog.String("topic", p.topic))
	return nil
}

// HandleEvent publishes edge events; steady reports are not published.
func (p *Publisher) HandleEvent(res touch.PollResult) error {
	if res.Kind != touch.KindEdge {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil || !p.client.IsConnected() {
		return errors.New("mqtt publisher not connected")
	}

	payload, err := json.Marshal(eventPayload{
		Event:    res.Edge.String(),
		X:        res.X,
		Y:        res.Y,
		RawX:     res.RawX,
		RawY:     res.RawY,
		Pressure: res.Pressure,
	})
	if err != nil {
		return err
	}

	p.nextID++
	varPub := mqtt.VariablesPublish{
		TopicName:        []byte(p.topic),
		PacketIdentifier: p.nextID,
	}

	_ = p.conn.SetDeadline(time.Now().Add(p.timeout))
	if err := p.client.PublishPayload(p.flags, varPub, payload); err != nil {
		return errors.New("mqtt publish: " + err.Error())
	}
	if err := p.client.HandleNext(); err != nil {
		p.logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
	}
	return nil
}

// Close drops the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = nil
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
