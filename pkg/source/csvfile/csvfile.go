// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

// Package csvfile reads registrar zone exports in the ";"-separated
// format `zone;name;type;target;weight;ttl` and serves them through the
// same Source interface as the API client.
package csvfile

import (
	"zoneferry/pkg/log"
	"zoneferry/pkg/migrate"

	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Field positions of one export row
const (
	fieldZone = iota
	fieldName
	fieldType
	fieldTarget
	fieldWeight
	fieldTTL
	fieldCount
)

// Provider implements migrate.Source on top of a CSV export file
type Provider struct {
	path   string
	logger *log.ScopedLogger

	mu      sync.Mutex
	zones   []string // distinct zones in file order
	records map[string][]migrate.SourceRecord
	rejects map[string][]migrate.RejectedRecord
}

// New parses the export at path. The file is read once; Watch can reload it.
func New(path, logLevel string) (*Provider, error) {
	p := &Provider{
		path:   path,
		logger: log.NewScopedLogger("[source/csv]", logLevel),
	}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Zones returns the distinct zones of the export in first-seen order
func (p *Provider) Zones(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	zones := make([]string, len(p.zones))
	copy(zones, p.zones)
	return zones, nil
}

// Records returns the records of one zone plus any rows that could not be
// parsed for that zone
func (p *Provider) Records(ctx context.Context, zone string) ([]migrate.SourceRecord, []migrate.RejectedRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records[zone], p.rejects[zone], nil
}

// reload re-reads and re-parses the export file
func (p *Provider) reload() error {
	file, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // row length is validated per row

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse export file %s: %w", p.path, err)
	}

	zones := []string{}
	records := make(map[string][]migrate.SourceRecord)
	rejects := make(map[string][]migrate.RejectedRecord)
	seen := make(map[string]bool)

	for _, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue // blank line
		}
		zone := strings.TrimSpace(row[fieldZone])
		if zone != "" && !seen[zone] {
			seen[zone] = true
			zones = append(zones, zone)
		}

		if len(row) != fieldCount {
			p.logger.Warn("something wrong, not creating record: %v", row)
			rejects[zone] = append(rejects[zone], migrate.RejectedRecord{
				Record: migrate.SourceRecord{Zone: zone, Value: strings.Join(row, ";")},
				Reason: migrate.ReasonShortRow,
			})
			continue
		}

		for _, record := range parseRow(zone, row, p.logger) {
			records[zone] = append(records[zone], record)
		}
	}

	p.mu.Lock()
	p.zones = zones
	p.records = records
	p.rejects = rejects
	p.mu.Unlock()

	p.logger.Verbose("loaded %d zones from %s", len(zones), p.path)
	return nil
}

// parseRow converts one well-formed export row into records. A target
// field holding several ","-separated values yields one record per value.
func parseRow(zone string, row []string, logger *log.ScopedLogger) []migrate.SourceRecord {
	name := strings.TrimSpace(row[fieldName])
	recordType := strings.ToUpper(strings.TrimSpace(row[fieldType]))

	var priority *int
	if recordType == migrate.TypeMX || recordType == migrate.TypeSRV {
		if v, err := strconv.Atoi(strings.TrimSpace(row[fieldWeight])); err == nil {
			priority = &v
		}
	}

	var ttl *int
	if raw := strings.TrimSpace(row[fieldTTL]); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			ttl = &v
		} else {
			logger.Warn("zone %s: ignoring unparseable ttl %q for %s", zone, raw, name)
		}
	}

	var records []migrate.SourceRecord
	for _, target := range strings.Split(row[fieldTarget], ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		records = append(records, migrate.SourceRecord{
			Zone:     zone,
			Name:     name,
			Type:     recordType,
			Value:    target,
			Priority: priority,
			TTL:      ttl,
		})
	}
	return records
}
