// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"net"
)

type Database interface {
	UpdateServer(server Server) error
	ReadServersByRegion(region string) (servers []Server, err error)
}

// Server is one row of the servers table, keyed by region and slot.
type Server struct {
	Region  string `dynamo:"region"`
	Slot    int    `dynamo:"slot"`
	IP      net.IP `dynamo:"ip"`
	Viewers int    `dynamo:"viewers"`
	Tiles   int    `dynamo:"tiles"`
	TTL     int64  `dynamo:"ttl,omitempty"`
}
