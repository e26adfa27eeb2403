package parser

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"firewall-network-graph/internal/model"
	"firewall-network-graph/pkg/wellknown"
)

// FortiGateParser reads a FortiGate configuration dump and turns its accept
// policies into rule records.
type FortiGateParser struct {
	scanner *bufio.Scanner

	Policies       []model.Policy
	AddressObjects map[string]*model.AddressObject
	ServiceObjects map[string]*model.ServiceObject
	AddrGrps       map[string][]string
	SvcGrps        map[string][]string
}

func NewFortiGateParser(reader io.Reader) *FortiGateParser {
	return &FortiGateParser{
		scanner:        bufio.NewScanner(reader),
		AddressObjects: make(map[string]*model.AddressObject),
		ServiceObjects: make(map[string]*model.ServiceObject),
		AddrGrps:       make(map[string][]string),
		SvcGrps:        make(map[string][]string),
	}
}

func parseFortiGate(r io.Reader) ([]model.Record, error) {
	p := NewFortiGateParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p.Records(), nil
}

func (p *FortiGateParser) Parse() error {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		switch {
		case strings.HasPrefix(line, "config firewall address"):
			if err := p.parseAddressConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall address config: %w", err)
			}
		case strings.HasPrefix(line, "config firewall addrgrp"):
			if err := p.parseMemberConfig(p.AddrGrps); err != nil {
				return fmt.Errorf("failed to parse firewall addrgrp config: %w", err)
			}
		case strings.HasPrefix(line, "config firewall service custom"):
			if err := p.parseServiceCustomConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall service custom config: %w", err)
			}
		case strings.HasPrefix(line, "config firewall service group"):
			if err := p.parseMemberConfig(p.SvcGrps); err != nil {
				return fmt.Errorf("failed to parse firewall service group config: %w", err)
			}
		case strings.HasPrefix(line, "config firewall policy"):
			if err := p.parsePolicyConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall policy config: %w", err)
			}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return p.flattenGroups()
}

func (p *FortiGateParser) parseAddressConfig() error {
	var currentObject *model.AddressObject
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			if len(parts) == 1 && parts[0] == "next" {
				currentObject = nil
			}
			continue
		}
		switch parts[0] {
		case "edit":
			name := unquote(parts[1])
			currentObject = &model.AddressObject{Name: name}
			p.AddressObjects[name] = currentObject
		case "set":
			if currentObject == nil || len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "type":
				currentObject.Type = parts[2]
			case "subnet":
				// Fortigate configs can have ipmask without a proper CIDR suffix.
				// e.g., set subnet 1.1.1.1 255.255.255.0
				prefixLen := 32
				if len(parts) > 3 {
					if maskIP := net.ParseIP(parts[3]).To4(); maskIP != nil {
						prefixLen, _ = net.IPMask(maskIP).Size()
					}
				}
				_, ipnet, err := net.ParseCIDR(fmt.Sprintf("%s/%d", parts[2], prefixLen))
				if err == nil {
					currentObject.IPNet = ipnet
					if currentObject.Type == "" {
						currentObject.Type = "ipmask"
					}
				}
			case "start-ip":
				currentObject.StartIP = net.ParseIP(parts[2])
			case "end-ip":
				currentObject.EndIP = net.ParseIP(parts[2])
			case "fqdn":
				currentObject.FQDN = unquote(parts[2])
			}
		}
	}
	return io.ErrUnexpectedEOF
}

// parseMemberConfig handles both addrgrp and service group blocks.
func (p *FortiGateParser) parseMemberConfig(groups map[string][]string) error {
	var currentGroup string
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) > 1 {
				currentGroup = unquote(parts[1])
			}
		case "set":
			if currentGroup != "" && len(parts) > 2 && parts[1] == "member" {
				var members []string
				for _, member := range parts[2:] {
					members = append(members, unquote(member))
				}
				groups[currentGroup] = members
			}
		case "next":
			currentGroup = ""
		}
	}
	return io.ErrUnexpectedEOF
}

func (p *FortiGateParser) parseServiceCustomConfig() error {
	var currentService *model.ServiceObject
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) < 2 {
				continue
			}
			name := unquote(parts[1])
			currentService = &model.ServiceObject{Name: name}
			p.ServiceObjects[name] = currentService
		case "set":
			if currentService == nil || !strings.Contains(line, "portrange") {
				continue
			}
			// Handles "set tcp-portrange 8001-8004" and "set tcp-portrange=8001-8004"
			parts = strings.Fields(strings.ReplaceAll(line, "=", " "))
			if len(parts) < 3 {
				continue
			}
			ports := strings.Split(strings.Split(parts[2], ":")[0], "-")
			startPort, _ := strconv.Atoi(ports[0])
			endPort := startPort
			if len(ports) > 1 {
				endPort, _ = strconv.Atoi(ports[1])
			}
			currentService.StartPort = startPort
			currentService.EndPort = endPort
			if strings.HasPrefix(parts[1], "tcp") {
				currentService.Protocol = model.TCP
			} else if strings.HasPrefix(parts[1], "udp") {
				currentService.Protocol = model.UDP
			}
		case "next":
			currentService = nil
		}
	}
	return io.ErrUnexpectedEOF
}

func (p *FortiGateParser) parsePolicyConfig() error {
	var currentPolicy *model.Policy

	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "end" {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) < 2 {
				continue
			}
			id := parts[1]
			priority, _ := strconv.Atoi(id)
			p.Policies = append(p.Policies, model.Policy{ID: id, Priority: priority, Enabled: true})
			currentPolicy = &p.Policies[len(p.Policies)-1]
		case "set":
			if currentPolicy == nil || len(parts) < 3 {
				continue
			}

			// Join parts from index 2 to the end, then split by quotes
			// This handles names with spaces like "My Policy Name"
			rawArgs := strings.TrimSpace(strings.Join(parts[2:], " "))
			args := strings.Split(rawArgs, `" "`)
			for i, arg := range args {
				args[i] = unquote(arg)
			}

			switch parts[1] {
			case "name":
				currentPolicy.Name = unquote(rawArgs)
			case "srcintf":
				currentPolicy.SrcIntf = strings.Join(args, ",")
			case "dstintf":
				currentPolicy.DstIntf = strings.Join(args, ",")
			case "srcaddr":
				currentPolicy.RawSrcAddrNames = append(currentPolicy.RawSrcAddrNames, args...)
			case "dstaddr":
				currentPolicy.RawDstAddrNames = append(currentPolicy.RawDstAddrNames, args...)
			case "service":
				currentPolicy.RawSvcNames = append(currentPolicy.RawSvcNames, args...)
			case "action":
				currentPolicy.Action = parts[2]
			case "status":
				currentPolicy.Enabled = parts[2] == "enable"
			case "schedule":
				currentPolicy.Schedule = unquote(parts[2])
			}
		case "next":
			if currentPolicy != nil {
				if len(currentPolicy.RawSrcAddrNames) == 0 {
					currentPolicy.RawSrcAddrNames = []string{"all"}
				}
				if len(currentPolicy.RawDstAddrNames) == 0 {
					currentPolicy.RawDstAddrNames = []string{"all"}
				}
				if len(currentPolicy.RawSvcNames) == 0 {
					currentPolicy.RawSvcNames = []string{"all"}
				}
			}
			currentPolicy = nil
		}
	}
	return io.ErrUnexpectedEOF
}

func (p *FortiGateParser) flattenGroups() error {
	for i := range p.Policies {
		policy := &p.Policies[i]

		for _, name := range policy.RawSrcAddrNames {
			resolved, err := p.flattenAddrGroup(name, make(map[string]bool))
			if err != nil {
				return fmt.Errorf("policy %s: failed to flatten srcaddr '%s': %w", policy.ID, name, err)
			}
			policy.SrcAddrs = append(policy.SrcAddrs, resolved...)
		}

		for _, name := range policy.RawDstAddrNames {
			resolved, err := p.flattenAddrGroup(name, make(map[string]bool))
			if err != nil {
				return fmt.Errorf("policy %s: failed to flatten dstaddr '%s': %w", policy.ID, name, err)
			}
			policy.DstAddrs = append(policy.DstAddrs, resolved...)
		}

		for _, name := range policy.RawSvcNames {
			resolved, err := p.flattenSvcGroup(name, make(map[string]bool))
			if err != nil {
				return fmt.Errorf("policy %s: failed to flatten service '%s': %w", policy.ID, name, err)
			}
			policy.Services = append(policy.Services, resolved...)
		}
	}
	return nil
}

func (p *FortiGateParser) flattenAddrGroup(name string, visited map[string]bool) ([]*model.AddressObject, error) {
	if strings.EqualFold(name, "all") {
		return []*model.AddressObject{{Name: "all"}}, nil
	}

	if visited[name] {
		return nil, fmt.Errorf("circular dependency detected in address group '%s'", name)
	}
	visited[name] = true
	defer delete(visited, name)

	var results []*model.AddressObject

	if addr, ok := p.AddressObjects[name]; ok {
		results = append(results, addr)
	}

	if members, ok := p.AddrGrps[name]; ok {
		for _, memberName := range members {
			memberAddrs, err := p.flattenAddrGroup(memberName, visited)
			if err != nil {
				return nil, err
			}
			results = append(results, memberAddrs...)
		}
	}

	return results, nil
}

func (p *FortiGateParser) flattenSvcGroup(name string, visited map[string]bool) ([]*model.ServiceObject, error) {
	if strings.EqualFold(name, "all") {
		return []*model.ServiceObject{{Name: "all"}}, nil
	}

	if visited[name] {
		return nil, fmt.Errorf("circular dependency detected in service group '%s'", name)
	}
	visited[name] = true
	defer delete(visited, name)

	var results []*model.ServiceObject
	found := false

	if svc, ok := p.ServiceObjects[name]; ok {
		results = append(results, svc)
		found = true
	}

	if members, ok := p.SvcGrps[name]; ok {
		for _, memberName := range members {
			memberSvcs, err := p.flattenSvcGroup(memberName, visited)
			if err != nil {
				return nil, err
			}
			results = append(results, memberSvcs...)
		}
		found = true
	}

	// Fall back to the well-known registry for predefined services like HTTPS or DNS.
	if !found {
		if wkServices, ok := wellknown.GetService(name); ok {
			for _, wk := range wkServices {
				results = append(results, &model.ServiceObject{
					Name:      name,
					Protocol:  wk.Protocol,
					StartPort: wk.Port,
					EndPort:   wk.Port,
				})
			}
		}
	}

	return results, nil
}

// Records expands every enabled accept policy into one record per
// (source address, destination address) pair. Interfaces become zones and
// the policy's flattened services become the port column.
func (p *FortiGateParser) Records() []model.Record {
	records := []model.Record{}
	for i := range p.Policies {
		policy := &p.Policies[i]
		if !policy.Enabled || policy.Action != "accept" {
			continue
		}

		service := strings.Join(policy.RawSvcNames, ",")
		ports := strings.Join(servicePorts(policy.Services), ",")

		for _, src := range policy.SrcAddrs {
			for _, dst := range policy.DstAddrs {
				rec := model.Record{
					RecordID:            len(records) + 1,
					RuleID:              policy.ID,
					SourceZone:          policy.SrcIntf,
					SourceIP:            addressToken(src),
					SourceObject:        src.Name,
					SourceHostname:      src.FQDN,
					TargetZone:          policy.DstIntf,
					TargetIP:            addressToken(dst),
					TargetObject:        dst.Name,
					TargetDomain:        dst.FQDN,
					TargetPort:          ports,
					Service:             service,
					ApplicationScenario: policy.Name,
					RequestNumber:       policy.ID,
				}
				if rec.SourceIP == "" || rec.TargetIP == "" {
					continue
				}
				records = append(records, rec)
			}
		}
	}
	return records
}

func addressToken(addr *model.AddressObject) string {
	if addr.Name == "all" {
		return "0.0.0.0/0"
	}
	switch addr.Type {
	case "ipmask", "":
		if addr.IPNet != nil {
			return addr.IPNet.String()
		}
	case "iprange":
		if addr.StartIP != nil && addr.EndIP != nil {
			return addr.StartIP.String() + "-" + addr.EndIP.String()
		}
	case "fqdn":
		return addr.FQDN
	}
	return ""
}

func servicePorts(services []*model.ServiceObject) []string {
	ports := make([]string, 0, len(services))
	for _, svc := range services {
		if svc.Name == "all" || svc.StartPort == 0 {
			continue
		}
		if svc.EndPort > svc.StartPort {
			ports = append(ports, fmt.Sprintf("%d-%d", svc.StartPort, svc.EndPort))
		} else {
			ports = append(ports, strconv.Itoa(svc.StartPort))
		}
	}
	return lo.Uniq(ports)
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
