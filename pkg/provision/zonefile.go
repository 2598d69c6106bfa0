// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package provision

import (
	"zoneferry/pkg/log"
	"zoneferry/pkg/migrate"

	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

func init() {
	Register("zonefile", NewZonefileProvisioner)
}

// ZonefileProvisioner writes each zone as an RFC 1035 master file instead
// of calling a provider API. It doubles as the dry-run target: the
// generated files can be reviewed or loaded into a nameserver directly.
type ZonefileProvisioner struct {
	directory string
	primaryNS string
	admin     string
	logger    *log.ScopedLogger
}

// NewZonefileProvisioner creates a zone file writer.
// Options: directory (default "zones"), primary_ns, admin_email.
func NewZonefileProvisioner(profileName string, options map[string]string) (Provisioner, error) {
	directory := options["directory"]
	if directory == "" {
		directory = "zones"
	}
	primaryNS := options["primary_ns"]
	if primaryNS == "" {
		primaryNS = "ns1.invalid."
	}
	admin := options["admin_email"]
	if admin == "" {
		admin = "hostmaster.invalid."
	} else {
		// Zone file notation: user@host becomes user.host.
		admin = strings.ReplaceAll(admin, "@", ".")
	}

	logPrefix := fmt.Sprintf("[provision/zonefile/%s]", profileName)
	return &ZonefileProvisioner{
		directory: directory,
		primaryNS: dns.Fqdn(primaryNS),
		admin:     dns.Fqdn(admin),
		logger:    log.NewScopedLogger(logPrefix, options["log_level"]),
	}, nil
}

// CreateZone starts a fresh master file for the zone and returns its path
// as the handle
func (z *ZonefileProvisioner) CreateZone(ctx context.Context, zone string) (migrate.ZoneHandle, error) {
	if err := os.MkdirAll(z.directory, 0755); err != nil {
		return "", fmt.Errorf("failed to create zone directory: %w", err)
	}

	path := filepath.Join(z.directory, zone+".db")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create zone file: %w", err)
	}
	defer file.Close()

	soa := &dns.SOA{
		Hdr:     dns.RR_Header{Name: dns.Fqdn(zone), Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 3600},
		Ns:      z.primaryNS,
		Mbox:    z.admin,
		Serial:  serialNumber(),
		Refresh: 7200,
		Retry:   3600,
		Expire:  1209600,
		Minttl:  3600,
	}

	header := fmt.Sprintf(";\n; Zone file for %s\n; Generated by zoneferry on %s\n;\n$ORIGIN %s\n\n%s\n",
		zone, time.Now().Format(time.RFC3339), dns.Fqdn(zone), soa.String())
	if _, err := file.WriteString(header); err != nil {
		return "", fmt.Errorf("failed to write zone file header: %w", err)
	}

	z.logger.Info("created zone file %s", path)
	return migrate.ZoneHandle(path), nil
}

// CreateRecord appends the spec's records to the zone's master file
func (z *ZonefileProvisioner) CreateRecord(ctx context.Context, handle migrate.ZoneHandle, spec *migrate.ResourceSpec) error {
	file, err := os.OpenFile(string(handle), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open zone file: %w", err)
	}
	defer file.Close()

	lines, err := renderSpec(spec)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	z.logger.Debug("wrote %s (%d lines)", spec.ResourceID, len(lines))
	return nil
}

// renderSpec renders a spec as zone file lines, one RR per target
func renderSpec(spec *migrate.ResourceSpec) ([]string, error) {
	if spec.Type == migrate.TypeSRV {
		rr := &dns.SRV{
			Hdr:      header(spec, dns.TypeSRV),
			Priority: uint16(spec.Priority),
			Weight:   uint16(spec.Weight),
			Port:     uint16(spec.Port),
			Target:   dns.Fqdn(spec.Targets[0]),
		}
		lines := []string{rr.String()}
		for _, extra := range spec.Targets[1:] {
			// Kept for review; only the first value was decoded
			lines = append(lines, fmt.Sprintf("; undecoded SRV value for %s: %q", spec.Name, extra))
		}
		return lines, nil
	}

	var lines []string
	for _, target := range spec.Targets {
		rr, err := buildRR(spec, target)
		if err != nil {
			return nil, err
		}
		if rr == nil {
			// Provider-specific types have no zone file representation
			lines = append(lines, fmt.Sprintf("; %s %s -> %s (no zone file representation)", spec.Name, spec.Type, target))
			continue
		}
		lines = append(lines, rr.String())
	}
	return lines, nil
}

func header(spec *migrate.ResourceSpec, rrtype uint16) dns.RR_Header {
	return dns.RR_Header{
		Name:   dns.Fqdn(spec.Name),
		Rrtype: rrtype,
		Class:  dns.ClassINET,
		Ttl:    uint32(spec.TTL),
	}
}

// buildRR converts one target of a non-SRV spec into an RR
func buildRR(spec *migrate.ResourceSpec, target string) (dns.RR, error) {
	switch spec.Type {
	case migrate.TypeA:
		ip := net.ParseIP(target)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("%s: %q is not an IPv4 address", spec.Name, target)
		}
		return &dns.A{Hdr: header(spec, dns.TypeA), A: ip}, nil

	case migrate.TypeAAAA:
		ip := net.ParseIP(target)
		if ip == nil || ip.To4() != nil {
			return nil, fmt.Errorf("%s: %q is not an IPv6 address", spec.Name, target)
		}
		return &dns.AAAA{Hdr: header(spec, dns.TypeAAAA), AAAA: ip}, nil

	case migrate.TypeCNAME:
		return &dns.CNAME{Hdr: header(spec, dns.TypeCNAME), Target: dns.Fqdn(target)}, nil

	case migrate.TypeTXT:
		return &dns.TXT{Hdr: header(spec, dns.TypeTXT), Txt: []string{target}}, nil

	case migrate.TypeNS:
		return &dns.NS{Hdr: header(spec, dns.TypeNS), Ns: dns.Fqdn(target)}, nil

	case migrate.TypeMX:
		return &dns.MX{Hdr: header(spec, dns.TypeMX), Preference: uint16(spec.Priority), Mx: dns.Fqdn(target)}, nil

	case migrate.TypeCAA:
		return buildCAA(spec, target)

	default:
		// AKAMAICDN and friends only exist on their provider
		return nil, nil
	}
}

// buildCAA parses the "flag tag value" layout of a CAA record value
func buildCAA(spec *migrate.ResourceSpec, target string) (dns.RR, error) {
	fields := strings.Fields(target)
	if len(fields) != 3 {
		return nil, fmt.Errorf("%s: CAA value %q is not 'flag tag value'", spec.Name, target)
	}
	flag, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%s: CAA flag %q is not a number", spec.Name, fields[0])
	}
	return &dns.CAA{
		Hdr:   header(spec, dns.TypeCAA),
		Flag:  uint8(flag),
		Tag:   fields[1],
		Value: strings.Trim(fields[2], `"`),
	}, nil
}

// serialNumber creates a YYYYMMDDNN-style SOA serial
func serialNumber() uint32 {
	now := time.Now()
	date, _ := strconv.ParseUint(now.Format("20060102"), 10, 32)
	return uint32(date)*100 + uint32(now.Hour())
}

// Name returns the provider name
func (z *ZonefileProvisioner) Name() string {
	return "zonefile"
}

// Validate checks that the target directory is usable
func (z *ZonefileProvisioner) Validate() error {
	if err := os.MkdirAll(z.directory, 0755); err != nil {
		return fmt.Errorf("zone directory %s is not writable: %w", z.directory, err)
	}
	return nil
}
