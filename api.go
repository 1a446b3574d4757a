package kiturami

import (
	"context"
	"encoding/json"
)

// Vendor command classes. Each selects how the controller interprets
// the fixed-width message body.
const (
	MessagePower             = "0101"
	MessageHeat              = "0102"
	MessageBathTemp          = "0103"
	MessageBath              = "0105"
	MessageAway              = "0106"
	MessageReservation       = "0107"
	MessageReservationRepeat = "0108"

	// Sent during the bath sequence; meaning undocumented, wire
	// behavior reproduced as observed.
	MessageBathAux = "0115"
)

// API maps device intents to vendor control messages. It is stateless
// apart from the client it dispatches through.
type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) Client() *Client {
	return a.client
}

// Alive checks whether a controller is reachable.
func (a *API) Alive(ctx context.Context, parentID, nodeID string) (json.RawMessage, error) {
	payload := map[string]string{
		"nodeId":   nodeID,
		"parentId": parentID,
	}
	body, err := a.client.Post(ctx, "/device/isAliveNormal", payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ModeInfo reads the current setting for one command class. An empty
// actionID defaults to the heat class.
func (a *API) ModeInfo(ctx context.Context, parentID, nodeID, slaveID, actionID string) (ModeInfo, error) {
	if actionID == "" {
		actionID = MessageHeat
	}
	payload := map[string]string{
		"nodeId":   nodeID,
		"actionId": actionID,
		"parentId": parentID,
		"slaveId":  slaveID,
	}
	var info ModeInfo
	if err := a.client.PostJSON(ctx, "/device/getDeviceModeInfo", payload, &info); err != nil {
		return ModeInfo{}, err
	}
	return info, nil
}

// DeviceControl dispatches a raw control message. Every command below
// flows through here.
func (a *API) DeviceControl(ctx context.Context, nodeID, messageID, messageBody string) (json.RawMessage, error) {
	payload := map[string]any{
		"nodeIds":     []string{nodeID},
		"messageId":   messageID,
		"messageBody": messageBody,
	}
	body, err := a.client.Post(ctx, "/device/deviceControl", payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (a *API) TurnOn(ctx context.Context, nodeID, slaveID string) error {
	body := encodeBody(lit(slaveID), lit("00000000"), dec(1, 2))
	_, err := a.DeviceControl(ctx, nodeID, MessagePower, body)
	return err
}

func (a *API) TurnOff(ctx context.Context, nodeID, slaveID string) error {
	body := encodeBody(lit(slaveID), lit("00000000"), dec(2, 2))
	_, err := a.DeviceControl(ctx, nodeID, MessagePower, body)
	return err
}

// ModeHeat switches a zone to heating. An empty targetTemp keeps the
// current setpoint: the value is read back once and re-sent verbatim.
func (a *API) ModeHeat(ctx context.Context, parentID, nodeID, slaveID, targetTemp string) error {
	if targetTemp == "" {
		info, err := a.ModeInfo(ctx, parentID, nodeID, slaveID, MessageHeat)
		if err != nil {
			return err
		}
		if info.Value == "" {
			return MissingFieldError{Endpoint: "/device/getDeviceModeInfo", Field: "value"}
		}
		targetTemp = info.Value
	}
	body := encodeBody(lit(slaveID), lit("000000"), lit(targetTemp), lit("00"))
	_, err := a.DeviceControl(ctx, nodeID, MessageHeat, body)
	return err
}

// ModeBath runs the vendor's four-step bath sequence. The steps are
// applied in order with no rollback; a failure part-way leaves the
// earlier steps applied. The final mode read-back is returned for
// confirmation.
func (a *API) ModeBath(ctx context.Context, parentID, nodeID string) (ModeInfo, error) {
	info, err := a.ModeInfo(ctx, parentID, nodeID, "01", MessageBath)
	if err != nil {
		return ModeInfo{}, err
	}
	if info.Value == "" {
		return ModeInfo{}, MissingFieldError{Endpoint: "/device/getDeviceModeInfo", Field: "value"}
	}
	body := encodeBody(lit("00000000"), lit(info.Value), lit("00"))
	if _, err := a.DeviceControl(ctx, nodeID, MessageBath, body); err != nil {
		return ModeInfo{}, err
	}

	// Fixed hot/cold temperature bytes, hex 80 and 70 on the wire.
	body = encodeBody(lit("00000000"), hexUpper(80, 2), hexUpper(70, 2))
	if _, err := a.DeviceControl(ctx, nodeID, MessageBathTemp, body); err != nil {
		return ModeInfo{}, err
	}

	body = encodeBody(lit("00000000"), hexUpper(70, 2), lit("00"))
	if _, err := a.DeviceControl(ctx, nodeID, MessageBathAux, body); err != nil {
		return ModeInfo{}, err
	}

	return a.ModeInfo(ctx, parentID, nodeID, "01", MessageBath)
}

// ModeReservation re-asserts the stored reservation schedule.
func (a *API) ModeReservation(ctx context.Context, parentID, nodeID, slaveID string) error {
	info, err := a.ModeInfo(ctx, parentID, nodeID, slaveID, MessageReservation)
	if err != nil {
		return err
	}
	if info.Value == "" {
		return MissingFieldError{Endpoint: "/device/getDeviceModeInfo", Field: "value"}
	}
	body := encodeBody(lit(slaveID), lit(info.Value))
	_, err = a.DeviceControl(ctx, nodeID, MessageReservation, body)
	return err
}

// ModeReservationRepeat re-asserts the repeating reservation schedule,
// which carries an extra option field alongside the value.
func (a *API) ModeReservationRepeat(ctx context.Context, parentID, nodeID, slaveID string) error {
	info, err := a.ModeInfo(ctx, parentID, nodeID, slaveID, MessageReservationRepeat)
	if err != nil {
		return err
	}
	if info.Value == "" {
		return MissingFieldError{Endpoint: "/device/getDeviceModeInfo", Field: "value"}
	}
	if info.Option1 == "" {
		return MissingFieldError{Endpoint: "/device/getDeviceModeInfo", Field: "option1"}
	}
	body := encodeBody(lit(slaveID), lit("000000"), lit(info.Value), lit(info.Option1))
	_, err = a.DeviceControl(ctx, nodeID, MessageReservationRepeat, body)
	return err
}

func (a *API) ModeAway(ctx context.Context, nodeID, slaveID string) error {
	body := encodeBody(lit(slaveID), lit("0200000000"))
	_, err := a.DeviceControl(ctx, nodeID, MessageAway, body)
	return err
}
