package discover

import (
	"context"
	"fmt"
	"net"

	"github.com/HerbHall/netseed/internal/netbox"
	"github.com/HerbHall/netseed/internal/simdata"
	"go.uber.org/zap"
)

// gigabit is the speed threshold (bits/second) above which an interface is
// classified as 1000base-t rather than "other".
const gigabit = 1_000_000_000

// Engine reconciles simulated discovery data into the inventory. It carries
// no state between target addresses; the dataset snapshot and inventory
// client are the only collaborators.
type Engine struct {
	dataset *simdata.Dataset
	inv     netbox.Inventory
	metrics *Metrics
	logger  *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(dataset *simdata.Dataset, inv netbox.Inventory, metrics *Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		dataset: dataset,
		inv:     inv,
		metrics: metrics,
		logger:  logger,
	}
}

// Run reconciles each target address in order and returns the aggregate
// report. Targets are processed sequentially; a failure on one target never
// aborts the rest of the run.
func (e *Engine) Run(ctx context.Context, targetAddrs []string) *Report {
	report := newReport()

	for _, ip := range targetAddrs {
		report.Scanned = append(report.Scanned, ip)

		rec, ok := e.dataset.Lookup(ip)
		if !ok {
			report.Skipped = append(report.Skipped, SkipOutcome{IP: ip, Reason: "no simulated SNMP data"})
			e.metrics.TargetsSkipped.Inc()
			continue
		}

		e.reconcileTarget(ctx, ip, rec, report)
	}

	return report
}

// reconcileTarget drives the create-or-update decision for one target's
// device, then its interfaces and IP addresses.
func (e *Engine) reconcileTarget(ctx context.Context, ip string, rec simdata.Record, report *Report) {
	deviceName := rec.SysName
	if deviceName == "" {
		deviceName = "device-" + ip
	}
	comments := fmt.Sprintf("Discovered via simulated SNMP. sysDescr: %s", rec.SysDescr)

	existing, err := e.inv.FindDeviceByName(ctx, deviceName)
	if err != nil {
		e.recordError(report, ErrorOutcome{IP: ip, Error: err.Error()})
		return
	}

	// device is the working reference for interface linking. It stays nil
	// when creation failed or when running in simulate-only mode.
	var device *netbox.Device

	if existing != nil {
		// Only the comments field is refreshed; existing attributes are
		// never overwritten.
		if _, err := e.inv.UpdateDevice(ctx, existing.ID, netbox.DevicePatch{Comments: comments}); err != nil {
			// The device exists and its id is valid, so interfaces still
			// link to it; only the refresh itself failed.
			e.recordError(report, ErrorOutcome{IP: ip, Error: err.Error()})
		} else {
			report.Updated = append(report.Updated, DeviceOutcome{IP: ip, Device: deviceName})
			e.metrics.DevicesUpdated.Inc()
		}
		device = existing
	} else {
		payload := netbox.DevicePayload{
			Name:     deviceName,
			Status:   "active",
			Comments: comments,
			// DeviceType, Role, Site, Serial stay null until enrichment.
		}
		created, err := e.inv.CreateDevice(ctx, payload)
		if err != nil {
			e.recordError(report, ErrorOutcome{IP: ip, Error: err.Error()})
		} else {
			report.Created = append(report.Created, DeviceOutcome{IP: ip, Device: deviceName})
			e.metrics.DevicesCreated.Inc()
			device = created
		}
	}

	for _, iface := range rec.Interfaces {
		e.reconcileInterface(ctx, ip, deviceName, device, iface, report)
	}
}

// reconcileInterface creates one remote interface (when a device id exists)
// and its IP address (when the record carries both address and netmask).
func (e *Engine) reconcileInterface(ctx context.Context, ip, deviceName string, device *netbox.Device, iface simdata.Interface, report *Report) {
	ifName := iface.Description
	if ifName == "" {
		ifName = fmt.Sprintf("if%d", iface.Index)
	}

	linkType := "other"
	if iface.Speed >= gigabit {
		linkType = "1000base-t"
	}

	// An interface is never created without a resolvable device id.
	var created *netbox.Interface
	if device != nil && device.ID != 0 {
		payload := netbox.InterfacePayload{
			Device:     device.ID,
			Name:       ifName,
			Type:       linkType,
			Enabled:    iface.AdminStatus == 1,
			MACAddress: iface.PhysAddress,
		}
		var err error
		created, err = e.inv.CreateInterface(ctx, payload)
		if err != nil {
			e.recordError(report, ErrorOutcome{IP: ip, Interface: ifName, Error: err.Error()})
			created = nil
		}
	}

	if iface.IPAddress == "" || iface.Netmask == "" {
		return
	}

	ipPayload := netbox.IPAddressPayload{
		Address:            withPrefix(iface.IPAddress, iface.Netmask),
		Status:             "active",
		Description:        fmt.Sprintf("Auto-discovered on %s %s", deviceName, ifName),
		AssignedObjectType: "dcim.interface",
	}
	if created != nil && created.ID != 0 {
		id := created.ID
		ipPayload.AssignedObjectID = &id
	}

	if _, err := e.inv.CreateIPAddress(ctx, ipPayload); err != nil {
		e.recordError(report, ErrorOutcome{IP: ip, Interface: ifName, Address: iface.IPAddress, Error: err.Error()})
	}
}

func (e *Engine) recordError(report *Report, outcome ErrorOutcome) {
	e.logger.Warn("inventory operation failed",
		zap.String("ip", outcome.IP),
		zap.String("iface", outcome.Interface),
		zap.String("error", outcome.Error),
	)
	report.Errors = append(report.Errors, outcome)
	e.metrics.ReconcileErrors.Inc()
}

// withPrefix renders addr in CIDR notation with the prefix length derived
// from netmask. An unparseable or non-contiguous netmask falls back to a /32
// host prefix rather than failing the run.
func withPrefix(addr, netmask string) string {
	mask := net.ParseIP(netmask)
	if mask4 := mask.To4(); mask4 != nil {
		ones, bits := net.IPv4Mask(mask4[0], mask4[1], mask4[2], mask4[3]).Size()
		if bits == 32 {
			return fmt.Sprintf("%s/%d", addr, ones)
		}
	}
	return addr + "/32"
}
