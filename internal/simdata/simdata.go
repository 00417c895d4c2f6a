// Package simdata holds the simulated SNMP discovery dataset. The dataset is
// loaded once at startup and treated as an immutable snapshot for the process
// lifetime; it stands in for live SNMP polling.
package simdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Interface is one discovered interface on a simulated device. Field names
// follow the SNMP IF-MIB objects the dataset mimics.
type Interface struct {
	Index       int    `json:"ifIndex" yaml:"ifIndex"`
	Description string `json:"ifDescr" yaml:"ifDescr"`
	Speed       uint64 `json:"ifSpeed" yaml:"ifSpeed"`
	AdminStatus int    `json:"ifAdminStatus" yaml:"ifAdminStatus"`
	PhysAddress string `json:"ifPhysAddress" yaml:"ifPhysAddress"`
	IPAddress   string `json:"ipAddress" yaml:"ipAddress"`
	Netmask     string `json:"ipNetmask" yaml:"ipNetmask"`
}

// Record is the simulated discovery result for one target address.
type Record struct {
	SysName    string      `json:"sysName" yaml:"sysName"`
	SysDescr   string      `json:"sysDescr" yaml:"sysDescr"`
	Interfaces []Interface `json:"interfaces" yaml:"interfaces"`
}

// Dataset is a read-only snapshot of simulated discovery records keyed by
// target address.
type Dataset struct {
	records map[string]Record
}

// New builds a Dataset from an in-memory record map. Intended for tests and
// for Load.
func New(records map[string]Record) *Dataset {
	if records == nil {
		records = map[string]Record{}
	}
	return &Dataset{records: records}
}

// Empty returns a Dataset with no records.
func Empty() *Dataset {
	return New(nil)
}

// Load reads the dataset file at path. A missing or malformed file is logged
// and degrades to an empty dataset so the service still starts; every target
// is then skipped as having no discovery data. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func Load(path string, logger *zap.Logger) *Dataset {
	records, err := read(path)
	if err != nil {
		logger.Error("could not load simulated SNMP dataset, continuing with empty dataset",
			zap.String("path", path),
			zap.Error(err),
		)
		return Empty()
	}
	logger.Info("simulated SNMP dataset loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return New(records)
}

func read(path string) (map[string]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var records map[string]Record
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
	}
	return records, nil
}

// Lookup returns the discovery record for addr. A miss is a normal outcome,
// not an error.
func (d *Dataset) Lookup(addr string) (Record, bool) {
	rec, ok := d.records[addr]
	return rec, ok
}

// Len returns the number of records in the snapshot.
func (d *Dataset) Len() int {
	return len(d.records)
}
