package netbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, Token: "test-token"}, zap.NewNop())
}

func TestFindDeviceByName_Match(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token test-token" {
			t.Errorf("Authorization = %q, want token header", got)
		}
		if r.URL.Path != "/api/dcim/devices/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "core-sw-01" {
			t.Errorf("name query = %q, want core-sw-01", got)
		}
		json.NewEncoder(w).Encode(deviceList{
			Count:   1,
			Results: []Device{{ID: 42, Name: "core-sw-01"}},
		})
	})

	dev, err := c.FindDeviceByName(context.Background(), "core-sw-01")
	if err != nil {
		t.Fatalf("FindDeviceByName: %v", err)
	}
	if dev == nil || dev.ID != 42 {
		t.Errorf("device = %+v, want id 42", dev)
	}
}

func TestFindDeviceByName_NoMatch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(deviceList{Count: 0})
	})

	dev, err := c.FindDeviceByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindDeviceByName: %v", err)
	}
	if dev != nil {
		t.Errorf("device = %+v, want nil for no match", dev)
	}
}

func TestFindDeviceByName_AmbiguousUsesFirst(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(deviceList{
			Count:   2,
			Results: []Device{{ID: 1, Name: "dup"}, {ID: 2, Name: "dup"}},
		})
	})

	dev, err := c.FindDeviceByName(context.Background(), "dup")
	if err != nil {
		t.Fatalf("FindDeviceByName: %v", err)
	}
	if dev == nil || dev.ID != 1 {
		t.Errorf("device = %+v, want first match (id 1)", dev)
	}
}

func TestCreateDevice_SendsNullPlaceholders(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		for _, key := range []string{"device_type", "device_role", "site", "serial"} {
			v, ok := body[key]
			if !ok {
				t.Errorf("body missing %q", key)
			}
			if v != nil {
				t.Errorf("%s = %v, want null", key, v)
			}
		}
		if body["status"] != "active" {
			t.Errorf("status = %v, want active", body["status"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Device{ID: 7, Name: "new-dev"})
	})

	dev, err := c.CreateDevice(context.Background(), DevicePayload{Name: "new-dev", Status: "active"})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if dev.ID != 7 {
		t.Errorf("ID = %d, want 7", dev.ID)
	}
}

func TestUpdateDevice_PatchesByID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %q, want PATCH", r.Method)
		}
		if r.URL.Path != "/api/dcim/devices/42/" {
			t.Errorf("path = %q, want /api/dcim/devices/42/", r.URL.Path)
		}
		var patch DevicePatch
		json.NewDecoder(r.Body).Decode(&patch)
		if patch.Comments == "" {
			t.Error("expected comments in patch body")
		}
		json.NewEncoder(w).Encode(Device{ID: 42})
	})

	if _, err := c.UpdateDevice(context.Background(), 42, DevicePatch{Comments: "refreshed"}); err != nil {
		t.Fatalf("UpdateDevice: %v", err)
	}
}

func TestCreateIPAddress_UnassignedSerializesNull(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		v, ok := body["assigned_object_id"]
		if !ok {
			t.Error("body missing assigned_object_id")
		}
		if v != nil {
			t.Errorf("assigned_object_id = %v, want null", v)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(IPAddress{ID: 3, Address: "10.0.0.5/24"})
	})

	_, err := c.CreateIPAddress(context.Background(), IPAddressPayload{
		Address:            "10.0.0.5/24",
		Status:             "active",
		AssignedObjectType: "dcim.interface",
	})
	if err != nil {
		t.Fatalf("CreateIPAddress: %v", err)
	}
}

func TestNonSuccessStatusBecomesAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "boom"}`, http.StatusBadGateway)
	})

	_, err := c.CreateInterface(context.Background(), InterfacePayload{Device: 1, Name: "eth0"})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Error("expected response body in APIError")
	}
}

func TestNew_UnconfiguredReturnsNoop(t *testing.T) {
	inv := New(Config{}, zap.NewNop())
	if _, ok := inv.(*Noop); !ok {
		t.Fatalf("New(unconfigured) = %T, want *Noop", inv)
	}

	inv = New(Config{URL: "http://netbox.local"}, zap.NewNop())
	if _, ok := inv.(*Noop); !ok {
		t.Fatalf("New(missing token) = %T, want *Noop", inv)
	}
}

func TestNoop_AllOperationsShortCircuit(t *testing.T) {
	n := NewNoop(zap.NewNop())
	ctx := context.Background()

	if dev, err := n.FindDeviceByName(ctx, "x"); dev != nil || err != nil {
		t.Errorf("FindDeviceByName = (%v, %v), want (nil, nil)", dev, err)
	}
	if dev, err := n.CreateDevice(ctx, DevicePayload{Name: "x"}); dev != nil || err != nil {
		t.Errorf("CreateDevice = (%v, %v), want (nil, nil)", dev, err)
	}
	if dev, err := n.UpdateDevice(ctx, 1, DevicePatch{}); dev != nil || err != nil {
		t.Errorf("UpdateDevice = (%v, %v), want (nil, nil)", dev, err)
	}
	if iface, err := n.CreateInterface(ctx, InterfacePayload{}); iface != nil || err != nil {
		t.Errorf("CreateInterface = (%v, %v), want (nil, nil)", iface, err)
	}
	if addr, err := n.CreateIPAddress(ctx, IPAddressPayload{}); addr != nil || err != nil {
		t.Errorf("CreateIPAddress = (%v, %v), want (nil, nil)", addr, err)
	}
}
