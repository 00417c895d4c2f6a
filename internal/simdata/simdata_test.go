package simdata

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

const jsonDataset = `{
	"10.0.0.5": {
		"sysName": "core-sw-01",
		"sysDescr": "Simulated switch",
		"interfaces": [
			{
				"ifIndex": 1,
				"ifDescr": "GigabitEthernet0/1",
				"ifSpeed": 1000000000,
				"ifAdminStatus": 1,
				"ifPhysAddress": "00:11:22:33:44:55",
				"ipAddress": "10.0.0.5",
				"ipNetmask": "255.255.255.0"
			}
		]
	}
}`

func TestLoad_JSON(t *testing.T) {
	path := writeDataset(t, "data.json", jsonDataset)
	ds := Load(path, zap.NewNop())

	if ds.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ds.Len())
	}

	rec, ok := ds.Lookup("10.0.0.5")
	if !ok {
		t.Fatal("Lookup miss for 10.0.0.5")
	}
	if rec.SysName != "core-sw-01" {
		t.Errorf("SysName = %q, want core-sw-01", rec.SysName)
	}
	if len(rec.Interfaces) != 1 {
		t.Fatalf("interfaces = %d, want 1", len(rec.Interfaces))
	}
	iface := rec.Interfaces[0]
	if iface.Speed != 1000000000 || iface.AdminStatus != 1 {
		t.Errorf("interface = %+v, want gigabit admin-up", iface)
	}
	if iface.Netmask != "255.255.255.0" {
		t.Errorf("Netmask = %q, want 255.255.255.0", iface.Netmask)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeDataset(t, "data.yaml", `
192.168.1.1:
  sysName: edge-rt-01
  sysDescr: Simulated router
  interfaces:
    - ifIndex: 2
      ifSpeed: 100000000
      ifAdminStatus: 2
`)
	ds := Load(path, zap.NewNop())

	rec, ok := ds.Lookup("192.168.1.1")
	if !ok {
		t.Fatal("Lookup miss for 192.168.1.1")
	}
	if rec.SysName != "edge-rt-01" {
		t.Errorf("SysName = %q, want edge-rt-01", rec.SysName)
	}
	if rec.Interfaces[0].Index != 2 {
		t.Errorf("Index = %d, want 2", rec.Interfaces[0].Index)
	}
}

func TestLoad_MissingFileDegradesToEmpty(t *testing.T) {
	ds := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	if ds.Len() != 0 {
		t.Errorf("Len = %d, want 0", ds.Len())
	}
	if _, ok := ds.Lookup("10.0.0.1"); ok {
		t.Error("Lookup should miss on empty dataset")
	}
}

func TestLoad_MalformedFileDegradesToEmpty(t *testing.T) {
	path := writeDataset(t, "broken.json", "{ not json")
	ds := Load(path, zap.NewNop())
	if ds.Len() != 0 {
		t.Errorf("Len = %d, want 0", ds.Len())
	}
}

func TestLookup_MissIsNotAnError(t *testing.T) {
	ds := New(map[string]Record{"10.0.0.1": {SysName: "a"}})
	if _, ok := ds.Lookup("10.0.0.2"); ok {
		t.Error("expected miss for unknown address")
	}
}
