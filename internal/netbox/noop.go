package netbox

import (
	"context"

	"go.uber.org/zap"
)

// Noop satisfies Inventory without a NetBox instance. Every operation logs
// what it would have done and returns an empty result with no error, which
// puts the service in simulate-only mode: reconciliation runs end to end but
// nothing is written anywhere.
type Noop struct {
	logger *zap.Logger
}

// Compile-time interface guard.
var _ Inventory = (*Noop)(nil)

// NewNoop creates a no-op Inventory.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) FindDeviceByName(_ context.Context, name string) (*Device, error) {
	n.logger.Debug("netbox not configured, skipping device lookup", zap.String("name", name))
	return nil, nil
}

func (n *Noop) CreateDevice(_ context.Context, payload DevicePayload) (*Device, error) {
	n.logger.Debug("netbox not configured, skipping device create", zap.String("name", payload.Name))
	return nil, nil
}

func (n *Noop) UpdateDevice(_ context.Context, id int64, _ DevicePatch) (*Device, error) {
	n.logger.Debug("netbox not configured, skipping device update", zap.Int64("id", id))
	return nil, nil
}

func (n *Noop) CreateInterface(_ context.Context, payload InterfacePayload) (*Interface, error) {
	n.logger.Debug("netbox not configured, skipping interface create", zap.String("name", payload.Name))
	return nil, nil
}

func (n *Noop) CreateIPAddress(_ context.Context, payload IPAddressPayload) (*IPAddress, error) {
	n.logger.Debug("netbox not configured, skipping ip address create", zap.String("address", payload.Address))
	return nil, nil
}
