// internal/publish/mqtt.go
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTConfig is the broker sink configuration.
type MQTTConfig struct {
	Broker    string // tcp://host:1883
	ClientID  string
	Username  string
	Password  string
	RootTopic string
	QoS       byte
	Retained  bool
}

// MQTTPublisher pushes register updates to one broker, change-detected per
// register so an idle unit does not flood the topic tree.
type MQTTPublisher struct {
	cfg    MQTTConfig
	client pahomqtt.Client
	log    zerolog.Logger

	mu   sync.Mutex
	last map[string]any
}

// NewMQTT connects to the broker and returns a publisher. The paho client
// reconnects on its own; publishes while disconnected are dropped with a
// log line rather than queued forever.
func NewMQTT(cfg MQTTConfig, log zerolog.Logger) (*MQTTPublisher, error) {
	if cfg.RootTopic == "" {
		cfg.RootTopic = "ventgate"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "ventgate"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("publish: mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publish: mqtt connect: %w", err)
	}

	return &MQTTPublisher{
		cfg:    cfg,
		client: client,
		log:    log.With().Str("component", "mqtt").Logger(),
		last:   make(map[string]any),
	}, nil
}

func (p *MQTTPublisher) PublishValues(updates []Update) {
	for _, u := range updates {
		key := "v/" + u.Name
		if !p.changed(key, u.Value, u.Available) {
			continue
		}
		p.emit(p.cfg.RootTopic+"/values/"+u.Name, u)
	}
}

func (p *MQTTPublisher) PublishDerived(derived map[string]any) {
	for name, v := range derived {
		key := "d/" + name
		if !p.changed(key, v, true) {
			continue
		}
		p.emit(p.cfg.RootTopic+"/derived/"+name, map[string]any{
			"name":  name,
			"value": v,
		})
	}
}

// SubscribeCommands listens on <root>/set/<name> and forwards each message
// body to handle. Register writes ride the same broker as the values.
func (p *MQTTPublisher) SubscribeCommands(handle func(name, payload string)) error {
	topic := p.cfg.RootTopic + "/set/+"
	token := p.client.Subscribe(topic, p.cfg.QoS, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		parts := strings.Split(msg.Topic(), "/")
		handle(parts[len(parts)-1], string(msg.Payload()))
	})
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish: subscribe %s timed out", topic)
	}
	return token.Error()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// changed records and reports whether a value differs from the last
// published one. Availability flips count as changes.
func (p *MQTTPublisher) changed(key string, value any, available bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := [2]any{value, available}
	if prev, ok := p.last[key]; ok && prev == cur {
		return false
	}
	p.last[key] = cur
	return true
}

func (p *MQTTPublisher) emit(topic string, payload any) {
	if !p.client.IsConnected() {
		p.log.Debug().Str("topic", topic).Msg("broker down, dropping publish")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn().Err(err).Str("topic", topic).Msg("marshal failed")
		return
	}

	token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retained, body)
	go func() {
		if token.Wait() && token.Error() != nil {
			p.log.Warn().Err(token.Error()).Str("topic", topic).Msg("publish failed")
		}
	}()
}
