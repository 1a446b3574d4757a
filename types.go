package kiturami

// Device is one entry of the account's memberDeviceList.
type Device struct {
	NodeID   string `json:"nodeId"`
	ParentID string `json:"parentId"`
	Alias    string `json:"alias"`
}

// SlaveInfo describes one zone controller below a node.
type SlaveInfo struct {
	SlaveID string `json:"slaveId"`
	Alias   string `json:"alias"`
}

// ModeInfo is the current setting for one command class. Option1 is only
// populated for the repeat-reservation action.
type ModeInfo struct {
	Value   string `json:"value"`
	Option1 string `json:"option1"`
}

type loginResponse struct {
	AuthKey string `json:"authKey"`
}

// Pointer slices distinguish an absent field from an empty list, so a
// malformed response surfaces as MissingFieldError rather than nil data.
type deviceListResponse struct {
	MemberDeviceList *[]Device `json:"memberDeviceList"`
}

type deviceInfoResponse struct {
	DeviceSlaveInfo *[]SlaveInfo `json:"deviceSlaveInfo"`
}
