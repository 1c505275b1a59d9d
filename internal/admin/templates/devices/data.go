package devices

import (
	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

// Columns is the declared schema for the device table. Rendering never
// infers columns from row contents.
var Columns = []partials.Column{
	{Key: "device_id", Label: "Device ID"},
	{Key: "owner_uuid", Label: "Owner"},
	{Key: "device_name", Label: "Name"},
}

// PageData is the device listing payload.
type PageData struct {
	Page    partials.PageData
	Devices []tracker.Device
	Error   string
}

// Rows converts devices into table cells ordered to match Columns.
func Rows(devices []tracker.Device) [][]string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.DeviceID, d.OwnerUID, d.Name})
	}
	return rows
}
