package netbox

// Device is the subset of a NetBox device record the service reads back.
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Status   any    `json:"status,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// DevicePayload is the body for device creation. The type, role, site, and
// serial fields are sent as explicit nulls: they are placeholders for future
// enrichment and must not be guessed at discovery time.
type DevicePayload struct {
	Name       string  `json:"name"`
	DeviceType *int64  `json:"device_type"`
	Role       *int64  `json:"device_role"`
	Serial     *string `json:"serial"`
	Site       *int64  `json:"site"`
	Status     string  `json:"status"`
	Comments   string  `json:"comments"`
}

// DevicePatch carries the only field a reconciliation run is allowed to
// refresh on an existing device.
type DevicePatch struct {
	Comments string `json:"comments"`
}

// Interface is the subset of a NetBox interface record the service reads back.
type Interface struct {
	ID     int64  `json:"id"`
	Device any    `json:"device,omitempty"`
	Name   string `json:"name"`
}

// InterfacePayload is the body for interface creation.
type InterfacePayload struct {
	Device     int64  `json:"device"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Enabled    bool   `json:"enabled"`
	MACAddress string `json:"mac_address,omitempty"`
}

// IPAddress is the subset of a NetBox IP address record the service reads back.
type IPAddress struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
}

// IPAddressPayload is the body for IP address creation. AssignedObjectID is a
// pointer so an unassigned address serializes as an explicit null.
type IPAddressPayload struct {
	Address            string `json:"address"`
	Status             string `json:"status"`
	Description        string `json:"description"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   *int64 `json:"assigned_object_id"`
}

// deviceList is the envelope NetBox returns for device queries.
type deviceList struct {
	Count   int      `json:"count"`
	Results []Device `json:"results"`
}
