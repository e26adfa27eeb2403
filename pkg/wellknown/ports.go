package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"firewall-network-graph/internal/model"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

// Ignore all icmp related firewall whitelist
const ICMP = "ALL_ICMP"

type ServiceEntry struct {
	Protocol model.Protocol
	Port     int
}

var (
	serviceRegistry map[string][]ServiceEntry
	portNames       map[ServiceEntry]string
)

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	portNames = make(map[ServiceEntry]string)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		register(strings.TrimSpace(record[1]), ServiceEntry{Protocol: model.TCP, Port: port})
		register(strings.TrimSpace(record[2]), ServiceEntry{Protocol: model.UDP, Port: port})
	}

	ignoreICMPAccept := ServiceEntry{
		Protocol: model.TCP,
		Port:     65535,
	}
	serviceRegistry[ICMP] = append(serviceRegistry[ICMP], ignoreICMPAccept)
}

func register(name string, entry ServiceEntry) {
	if name == "" || name == "N/A" {
		return
	}
	key := strings.ToUpper(name)
	serviceRegistry[key] = append(serviceRegistry[key], entry)
	if _, ok := portNames[entry]; !ok {
		portNames[entry] = name
	}
	// Common alias for DNS
	if name == "domain" {
		serviceRegistry["DNS"] = append(serviceRegistry["DNS"], entry)
	}
}

// GetService returns the port and protocol for a well-known service name.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// NameForPort returns the well-known service name for a port token such as
// "443", "53/udp" or "tcp/22". Tokens without a protocol are looked up as tcp
// first, then udp. Ranges and non-numeric tokens are not resolved.
func NameForPort(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	protos := []model.Protocol{model.TCP, model.UDP}

	if before, after, ok := strings.Cut(token, "/"); ok {
		switch {
		case model.Protocol(after) == model.TCP || model.Protocol(after) == model.UDP:
			token, protos = before, []model.Protocol{model.Protocol(after)}
		case model.Protocol(before) == model.TCP || model.Protocol(before) == model.UDP:
			token, protos = after, []model.Protocol{model.Protocol(before)}
		default:
			return "", false
		}
	}

	port, err := strconv.Atoi(token)
	if err != nil {
		return "", false
	}
	for _, proto := range protos {
		if name, ok := portNames[ServiceEntry{Protocol: proto, Port: port}]; ok {
			return name, true
		}
	}
	return "", false
}
