package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joshp123/kiturami"
)

const (
	defaultTopicPrefix = "kiturami"

	// A bath sequence is four API calls, each paying the vendor
	// courtesy delay, so commands get a generous budget.
	commandTimeout = 60 * time.Second
)

// Config defines the MQTT broker connection for the command bridge.
type Config struct {
	BrokerHost  string
	BrokerPort  int
	TLS         bool
	Username    string
	Password    string
	TopicPrefix string
}

// Command is the payload accepted on <prefix>/<node>/<slave>/command.
type Command struct {
	Action     string `json:"action"`
	TargetTemp string `json:"target_temp,omitempty"`
}

type commandResult struct {
	Action string `json:"action"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Bridge subscribes to command topics and dispatches them through the
// Kiturami facade, publishing per-command results.
type Bridge struct {
	api      *kiturami.API
	mqtt     *mqttClient
	prefix   string
	parentID string
}

func New(cfg Config, api *kiturami.API) (*Bridge, error) {
	if cfg.BrokerHost == "" {
		return nil, fmt.Errorf("mqtt broker host is required")
	}
	port := cfg.BrokerPort
	if port == 0 {
		port = 1883
	}
	prefix := strings.Trim(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}

	mc, err := newMQTTClient(mqttConfig{
		host:     cfg.BrokerHost,
		port:     port,
		tls:      cfg.TLS,
		username: cfg.Username,
		password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	return &Bridge{
		api:      api,
		mqtt:     mc,
		prefix:   prefix,
		parentID: "1",
	}, nil
}

func (b *Bridge) Start() error {
	filter := b.prefix + "/+/+/command"
	return b.mqtt.subscribe(filter, b.onMessage)
}

func (b *Bridge) Close() {
	b.mqtt.close()
}

func (b *Bridge) onMessage(topic string, payload []byte) {
	nodeID, slaveID, err := parseCommandTopic(b.prefix, topic)
	if err != nil {
		log.Printf("bridge: ignoring message on %q: %v", topic, err)
		return
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.publishResult(nodeID, slaveID, commandResult{Status: "error", Error: fmt.Sprintf("decode command: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result := commandResult{Action: cmd.Action, Status: "ok"}
	if err := b.dispatch(ctx, nodeID, slaveID, cmd); err != nil {
		result.Status = "error"
		result.Error = err.Error()
	}
	b.publishResult(nodeID, slaveID, result)
}

func (b *Bridge) dispatch(ctx context.Context, nodeID, slaveID string, cmd Command) error {
	switch cmd.Action {
	case "power_on":
		return b.api.TurnOn(ctx, nodeID, slaveID)
	case "power_off":
		return b.api.TurnOff(ctx, nodeID, slaveID)
	case "heat":
		return b.api.ModeHeat(ctx, b.parentID, nodeID, slaveID, cmd.TargetTemp)
	case "bath":
		_, err := b.api.ModeBath(ctx, b.parentID, nodeID)
		return err
	case "away":
		return b.api.ModeAway(ctx, nodeID, slaveID)
	case "reservation":
		return b.api.ModeReservation(ctx, b.parentID, nodeID, slaveID)
	case "reservation_repeat":
		return b.api.ModeReservationRepeat(ctx, b.parentID, nodeID, slaveID)
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

func (b *Bridge) publishResult(nodeID, slaveID string, result commandResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	topic := strings.Join([]string{b.prefix, nodeID, slaveID, "result"}, "/")
	_ = b.mqtt.publish(topic, payload)
}

func parseCommandTopic(prefix, topic string) (nodeID, slaveID string, err error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", "", fmt.Errorf("topic %q outside prefix %q", topic, prefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "command" || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed command topic %q", topic)
	}
	return parts[0], parts[1], nil
}
