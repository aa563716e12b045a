// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"
)

const AWSProfile = "tilestream"

// UserData is read from the EC2 instance's user data.
type UserData struct {
	Domain        string
	Region        string
	Stage         string
	ServerSlots   int
	Route53ZoneID string
}

func getAWSSession(region string) (*session.Session, error) {
	usr, err := user.Current()
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("%s/.aws/credentials", usr.HomeDir)
	var creds *credentials.Credentials
	if _, statErr := os.Stat(path); statErr == nil {
		creds = credentials.NewSharedCredentials(path, AWSProfile)
	} else {
		creds = credentials.NewCredentials(&ec2rolecreds.EC2RoleProvider{Client: ec2metadata.New(session.Must(session.NewSession()))})
	}
	return session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: creds,
	})
}

func getPublicIP() (net.IP, error) {
	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://checkip.amazonaws.com")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	ipString := strings.TrimSpace(string(body))
	ip := net.ParseIP(ipString)
	if ip == nil {
		return nil, fmt.Errorf("could not parse IP address %q", ipString)
	}
	return ip, nil
}

func loadUserData() (*UserData, error) {
	client := http.Client{Timeout: time.Second / 2}
	response, err := client.Get("http://169.254.169.254/latest/user-data/")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	return parseUserData(string(body))
}

// parseUserData reads NAME="value" lines.
func parseUserData(userData string) (*UserData, error) {
	data := &UserData{}

	for _, variable := range strings.Split(userData, "\n") {
		equalsIndex := strings.IndexRune(variable, '=')
		if equalsIndex == -1 {
			continue
		}
		name := strings.Trim(variable[:equalsIndex], " ")
		value := strings.Trim(variable[equalsIndex+1:], "\" \r")

		switch name {
		case "DOMAIN":
			data.Domain = value
		case "REGION":
			data.Region = value
		case "STAGE":
			data.Stage = value
		case "SERVER_SLOTS":
			slots, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("SERVER_SLOTS: %w", err)
			}
			data.ServerSlots = slots
		case "ROUTE53_ZONEID":
			data.Route53ZoneID = value
		}
	}

	if data.Domain == "" {
		return nil, errors.New("missing domain")
	}
	if data.Region == "" {
		return nil, errors.New("missing region")
	}
	if data.Stage == "" {
		return nil, errors.New("missing stage")
	}
	if data.ServerSlots < 1 {
		return nil, errors.New("missing server slots")
	}
	if data.Route53ZoneID == "" {
		return nil, errors.New("missing route53 zoneID")
	}
	return data, nil
}
