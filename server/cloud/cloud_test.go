// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"github.com/SoftbearStudios/tilestream/server/cloud/db"
	"net"
	"testing"
)

type memoryDatabase struct {
	servers []db.Server
}

func (m *memoryDatabase) UpdateServer(server db.Server) error {
	for i := range m.servers {
		if m.servers[i].Region == server.Region && m.servers[i].Slot == server.Slot {
			m.servers[i] = server
			return nil
		}
	}
	m.servers = append(m.servers, server)
	return nil
}

func (m *memoryDatabase) ReadServersByRegion(region string) (servers []db.Server, err error) {
	for _, s := range m.servers {
		if s.Region == region {
			servers = append(servers, s)
		}
	}
	return
}

type memoryDNS struct {
	routes map[int]net.IP
}

func (m *memoryDNS) UpdateRoute(_ string, slot int, address net.IP) error {
	if m.routes == nil {
		return errors.New("dns unavailable")
	}
	m.routes[slot] = address
	return nil
}

type memoryFS map[string][]byte

func (m memoryFS) UploadStaticFile(filename string, _ int, data []byte) error {
	m[filename] = data
	return nil
}

func TestNilCloud(t *testing.T) {
	var cloud *Cloud
	if cloud.String() != "[offline]" {
		t.Errorf("got %s", cloud)
	}
	if err := cloud.UpdateServer(1, 2); err != nil {
		t.Error(err)
	}
	if err := cloud.UploadPreview("a.png", nil); err != nil {
		t.Error(err)
	}
}

func TestAllocateSlot(t *testing.T) {
	a := net.ParseIP("10.0.0.1")
	b := net.ParseIP("10.0.0.2")
	c := net.ParseIP("10.0.0.3")
	servers := []db.Server{{Slot: 0, IP: a}, {Slot: 2, IP: b}}

	if slot := allocateSlot(servers, b, 3); slot != 2 {
		t.Errorf("expected old slot 2, got %d", slot)
	}
	if slot := allocateSlot(servers, c, 3); slot != 1 {
		t.Errorf("expected free slot 1, got %d", slot)
	}
	if slot := allocateSlot(servers, c, 2); slot != 1 {
		t.Errorf("expected free slot 1, got %d", slot)
	}
	if slot := allocateSlot(servers[:1], c, 1); slot != -1 {
		t.Errorf("expected no slot, got %d", slot)
	}
}

func TestCloud_ClaimSlot(t *testing.T) {
	database := &memoryDatabase{servers: []db.Server{{Region: "us-east-1", Slot: 0, IP: net.ParseIP("10.0.0.9")}}}
	routes := &memoryDNS{routes: make(map[int]net.IP)}
	files := memoryFS{}
	ip := net.ParseIP("10.0.0.1")

	cloud := &Cloud{region: "us-east-1", ip: ip, database: database, dns: routes, fs: files}
	if err := cloud.claimSlot(4); err != nil {
		t.Fatal(err)
	}
	if cloud.serverSlot != 1 || !routes.routes[1].Equal(ip) {
		t.Fatalf("claimed slot %d, routes %v", cloud.serverSlot, routes.routes)
	}
	if cloud.String() != "[us-east-1 1 10.0.0.1]" {
		t.Errorf("got %s", cloud)
	}

	if err := cloud.UpdateServer(3, 25); err != nil {
		t.Fatal(err)
	}
	servers, _ := database.ReadServersByRegion("us-east-1")
	if len(servers) != 2 || servers[1].Viewers != 3 || servers[1].Tiles != 25 || servers[1].TTL == 0 {
		t.Fatalf("unexpected rows %+v", servers)
	}

	if err := cloud.UploadPreview("preview/0_0.png", []byte{1}); err != nil || len(files["preview/0_0.png"]) != 1 {
		t.Fatal("preview not uploaded")
	}

	offline := &Cloud{region: "us-east-1", ip: ip, database: database, dns: &memoryDNS{}}
	if err := offline.claimSlot(4); err == nil {
		t.Fatal("expected dns error")
	}
}

func TestParseUserData(t *testing.T) {
	data, err := parseUserData("DOMAIN=\"example.com\"\nREGION=us-east-1\nSTAGE=prod\nSERVER_SLOTS=4\nROUTE53_ZONEID=Z123\n")
	if err != nil {
		t.Fatal(err)
	}
	want := UserData{Domain: "example.com", Region: "us-east-1", Stage: "prod", ServerSlots: 4, Route53ZoneID: "Z123"}
	if *data != want {
		t.Errorf("got %+v", *data)
	}

	if _, err := parseUserData("DOMAIN=example.com\nSERVER_SLOTS=many"); err == nil {
		t.Error("expected error")
	}
	if _, err := parseUserData("DOMAIN=example.com"); err == nil {
		t.Error("expected error")
	}
}
