// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server"
	"github.com/SoftbearStudios/tilestream/server/cloud"
	"github.com/SoftbearStudios/tilestream/server/config"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
)

func main() {
	var (
		configPath     string
		dumpConfig     string
		port           int
		maxConnections int
	)

	flag.StringVar(&configPath, "config", "", "yaml or json config file (defaults if empty)")
	flag.StringVar(&dumpConfig, "dump-config", "", "write the effective config to `file` and exit")
	flag.IntVar(&port, "port", 0, "http service port (overrides config)")
	flag.IntVar(&maxConnections, "max-connections", 0, "maximum number of inbound TCP connections (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if maxConnections != 0 {
		cfg.Server.MaxConnections = maxConnections
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if dumpConfig != "" {
		if err := cfg.Save(dumpConfig); err != nil {
			log.Fatal(err)
		}
		return
	}

	var c server.Cloud

	c, err = cloud.New()
	if err != nil {
		// Cloud is not required for server to function, just log an error
		log.Printf("Cloud error: %v\n", err)

		c = server.Offline{}
	}

	hub := server.NewHub(server.HubOptions{
		Config: cfg,
		Cloud:  c,
	})

	go hub.Run()

	log.Printf("tilestream server started on :%d", cfg.Server.Port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)
	http.HandleFunc("/preview.png", hub.ServePreview)

	l, err := net.Listen("tcp", fmt.Sprint(":", cfg.Server.Port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, cfg.Server.MaxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
