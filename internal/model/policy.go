package model

import "net"

type Protocol string // "tcp", "udp"

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

type AddressObject struct {
	Name    string
	Type    string // "ipmask", "iprange", "fqdn"
	IPNet   *net.IPNet
	StartIP net.IP
	EndIP   net.IP
	FQDN    string
}

type ServiceObject struct {
	Name      string
	Protocol  Protocol
	StartPort int
	EndPort   int
}

// Policy is a firewall policy as read from a FortiGate configuration.
type Policy struct {
	ID              string
	Priority        int
	Name            string
	SrcIntf         string
	DstIntf         string
	SrcAddrs        []*AddressObject // Pre-expanded group
	DstAddrs        []*AddressObject
	Services        []*ServiceObject
	RawSrcAddrNames []string
	RawDstAddrNames []string
	RawSvcNames     []string
	Action          string // "accept", "deny"
	Enabled         bool
	Schedule        string
}
