package bridge

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttClient struct {
	client mqtt.Client
	mu     sync.Mutex
	subs   map[string]func(topic string, payload []byte)
}

type mqttConfig struct {
	host     string
	port     int
	tls      bool
	username string
	password string
}

func newMQTTClient(cfg mqttConfig) (*mqttClient, error) {
	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.tls {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.host, cfg.port))
	opts.SetUsername(cfg.username)
	opts.SetPassword(cfg.password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	mc := &mqttClient{subs: make(map[string]func(string, []byte))}
	opts.OnConnect = func(_ mqtt.Client) {
		mc.resubscribeAll()
	}
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	mc.client = client
	return mc, nil
}

// subscribe registers a handler for a topic filter. Filters may contain
// wildcards; the handler receives the concrete topic of each message.
func (c *mqttClient) subscribe(filter string, cb func(topic string, payload []byte)) error {
	c.mu.Lock()
	c.subs[filter] = cb
	c.mu.Unlock()

	token := c.client.Subscribe(filter, 0, func(_ mqtt.Client, msg mqtt.Message) {
		cb(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) publish(topic string, payload []byte) error {
	if token := c.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) resubscribeAll() {
	c.mu.Lock()
	filters := make(map[string]func(string, []byte), len(c.subs))
	for filter, cb := range c.subs {
		filters[filter] = cb
	}
	c.mu.Unlock()
	for filter, cb := range filters {
		handler := cb
		_ = c.client.Subscribe(filter, 0, func(_ mqtt.Client, msg mqtt.Message) {
			handler(msg.Topic(), msg.Payload())
		}).Wait()
	}
}

func (c *mqttClient) close() {
	if c.client != nil {
		c.client.Disconnect(250)
	}
}

func randomClientID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "kiturami-" + base64.RawURLEncoding.EncodeToString(b)
}
