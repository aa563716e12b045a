// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud reports a server to AWS: its status row in DynamoDB, its
// Route53 hostname and preview images on S3.
package cloud

import (
	"errors"
	"github.com/SoftbearStudios/tilestream/server/cloud/db"
	"github.com/SoftbearStudios/tilestream/server/cloud/dns"
	"github.com/SoftbearStudios/tilestream/server/cloud/fs"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	updatePeriod = 30 * time.Second
	previewCache = 60 // seconds
)

// A nil cloud is valid to use with any methods (acts as a no-op)
// This just means server is in offline mode
type Cloud struct {
	region     string
	serverSlot int
	ip         net.IP
	database   db.Database
	dns        dns.DNS
	fs         fs.Filesystem
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	if cloud == nil {
		builder.WriteString("offline")
	} else {
		builder.WriteString(cloud.region)
		builder.WriteByte(' ')
		builder.WriteString(strconv.Itoa(cloud.serverSlot))
		builder.WriteByte(' ')
		builder.WriteString(cloud.ip.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

// New claims a server slot in this instance's region. Returns nil cloud on error.
func New() (*Cloud, error) {
	userData, err := loadUserData()
	if err != nil {
		return nil, err
	}

	ip, err := getPublicIP()
	if err != nil {
		return nil, err
	}
	session, err := getAWSSession(userData.Region)
	if err != nil {
		return nil, err
	}

	cloud := &Cloud{region: userData.Region, ip: ip}
	if cloud.database, err = db.NewDynamoDBDatabase(session, userData.Stage); err != nil {
		return nil, err
	}
	if cloud.dns, err = dns.NewRoute53DNS(session, userData.Domain, userData.Route53ZoneID); err != nil {
		return nil, err
	}
	if cloud.fs, err = fs.NewS3Filesystem(session, userData.Stage); err != nil {
		return nil, err
	}

	if err = cloud.claimSlot(userData.ServerSlots); err != nil {
		return nil, err
	}
	return cloud, nil
}

// claimSlot reclaims this ip's old slot or takes the first free one, then
// routes it here.
func (cloud *Cloud) claimSlot(slots int) error {
	servers, err := cloud.database.ReadServersByRegion(cloud.region)
	if err != nil {
		return err
	}

	cloud.serverSlot = allocateSlot(servers, cloud.ip, slots)
	if cloud.serverSlot == -1 {
		return errors.New("no empty server slot")
	}

	if err = cloud.dns.UpdateRoute(cloud.region, cloud.serverSlot, cloud.ip); err != nil {
		return err
	}
	return cloud.UpdateServer(0, 0)
}

func allocateSlot(servers []db.Server, ip net.IP, slots int) int {
	// Reclaim old slot if applicable
	for _, server := range servers {
		if ip.Equal(server.IP) {
			return server.Slot
		}
	}

scan:
	for slot := 0; slot < slots; slot++ {
		for _, server := range servers {
			if server.Slot == slot {
				// Slot is taken
				continue scan
			}
		}
		return slot
	}
	return -1
}

// UpdateServer must be called at least every UpdatePeriod or the row expires.
func (cloud *Cloud) UpdateServer(viewers, tiles int) error {
	if cloud == nil {
		return nil
	}
	return cloud.database.UpdateServer(db.Server{
		Region:  cloud.region,
		Slot:    cloud.serverSlot,
		IP:      cloud.ip,
		Viewers: viewers,
		Tiles:   tiles,
		TTL:     time.Now().Unix() + int64(updatePeriod/time.Second) + 5,
	})
}

func (cloud *Cloud) UploadPreview(filename string, data []byte) error {
	if cloud == nil {
		return nil
	}
	return cloud.fs.UploadStaticFile(filename, previewCache, data)
}

func (cloud *Cloud) UpdatePeriod() time.Duration {
	return updatePeriod
}
