package types

import "time"

type DeviceType string

const (
	DeviceTypeGas    DeviceType = "gas_sensor"
	DeviceTypeLDR    DeviceType = "ldr_sensor"
	DeviceTypeFusion DeviceType = "fusion_node"
)

// SafetyStatus wird serverseitig aus Gas/Distanz/Temperatur berechnet
type SafetyStatus string

const (
	StatusSafe    SafetyStatus = "SAFE"
	StatusWarning SafetyStatus = "WARNING"
	StatusDanger  SafetyStatus = "DANGER"
)

// Device is one registered ESP32 node. The device_token authenticates the
// firmware against the ingest endpoints and is distinct from the user session.
type Device struct {
	DeviceID    string     `json:"device_id"`
	DeviceType  DeviceType `json:"device_type"`
	DeviceToken string     `json:"device_token,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

// UserProfile mirrors /api/v1/users/me. FullName and PhoneNumber stay
// pointers: the backend reports null until onboarding is completed.
type UserProfile struct {
	Email       string  `json:"email"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
}

// HasFullName reports whether onboarding has been completed.
func (p *UserProfile) HasFullName() bool {
	return p != nil && p.FullName != nil && *p.FullName != ""
}

// GasReading is one environmental sample. All sensor fields are nullable,
// a node may push partial frames.
type GasReading struct {
	ID          int64        `json:"id"`
	DeviceID    string       `json:"device_id"`
	Timestamp   time.Time    `json:"timestamp"`
	Gas         *float64     `json:"gas"`
	Temperature *float64     `json:"temperature"`
	Humidity    *float64     `json:"humidity"`
	Distance    *float64     `json:"distance"`
	Status      SafetyStatus `json:"status,omitempty"`
}

// LightReading is one LDR sample. DigitalValue carries the device-local
// auto-logic decision, AnalogValue the raw ADC level (scale per firmware
// revision, see telemetry.analog_max).
type LightReading struct {
	ID           int64     `json:"id"`
	DeviceID     string    `json:"device_id"`
	Timestamp    time.Time `json:"timestamp"`
	AnalogValue  int       `json:"analog_value"`
	DigitalValue bool      `json:"digital_value"`
}

// Output is a manually controllable actuator bound to one device.
type Output struct {
	ID          int64     `json:"id"`
	DeviceID    string    `json:"device_id"`
	OutputName  string    `json:"output_name"`
	GpioPin     int       `json:"gpio_pin"`
	IsActive    bool      `json:"is_active"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// MergedSample pairs a gas and a light sample for joint display. Derived,
// recomputed every poll cycle, never persisted.
type MergedSample struct {
	Timestamp time.Time `json:"timestamp"`
	Gas       *float64  `json:"gas"`
	Light     *int      `json:"light"`
}
