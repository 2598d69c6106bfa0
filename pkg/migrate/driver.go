// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package migrate

import (
	"zoneferry/pkg/log"

	"context"
)

// Source produces zone data, either from the registrar API or a CSV export.
// Records may return rejections of its own for rows it could not parse.
type Source interface {
	Zones(ctx context.Context) ([]string, error)
	Records(ctx context.Context, zone string) ([]SourceRecord, []RejectedRecord, error)
}

// ZoneHandle is the opaque token returned by zone creation. It is a
// dependency marker: records for a zone are only submitted after the
// zone's handle has been issued.
type ZoneHandle string

// Provisioner is the destination side of the migration. How records are
// persisted is up to the implementation.
type Provisioner interface {
	CreateZone(ctx context.Context, zone string) (ZoneHandle, error)
	CreateRecord(ctx context.Context, handle ZoneHandle, spec *ResourceSpec) error
}

// Summary reports the outcome of a migration run
type Summary struct {
	ZonesCreated   int
	RecordsCreated int
	RecordErrors   int
	Rejected       []RejectedRecord
	FailedZones    []string
}

// Driver sequences the whole migration: list, aggregate, provision, one
// zone at a time. A failure aborts only the zone it occurred in.
type Driver struct {
	source Source
	prov   Provisioner
	opts   Options
	logger *log.ScopedLogger
}

// NewDriver wires a source to a provisioner
func NewDriver(source Source, prov Provisioner, opts Options) *Driver {
	return &Driver{
		source: source,
		prov:   prov,
		opts:   opts,
		logger: log.NewScopedLogger("[migrate/driver]", opts.LogLevel),
	}
}

// Run migrates the named zones. With a nil or empty list, all zones the
// source knows about are migrated.
func (d *Driver) Run(ctx context.Context, zones []string) (*Summary, error) {
	if len(zones) == 0 {
		discovered, err := d.source.Zones(ctx)
		if err != nil {
			return nil, err
		}
		zones = discovered
	}

	summary := &Summary{}
	for _, zone := range zones {
		d.migrateZone(ctx, zone, summary)
	}

	d.logger.Info("run complete: %d zones, %d records, %d rejected, %d failed zones",
		summary.ZonesCreated, summary.RecordsCreated, len(summary.Rejected), len(summary.FailedZones))
	return summary, nil
}

// migrateZone lists, aggregates and provisions a single zone. Partial
// aggregation state is discarded on a listing failure; completed zones are
// unaffected.
func (d *Driver) migrateZone(ctx context.Context, zone string, summary *Summary) {
	records, parseRejects, err := d.source.Records(ctx, zone)
	if err != nil {
		d.logger.Warn("skipping zone %s: %v", zone, err)
		summary.FailedZones = append(summary.FailedZones, zone)
		return
	}
	summary.Rejected = append(summary.Rejected, parseRejects...)

	if len(records) == 0 {
		// Nothing to migrate; do not create an empty zone
		d.logger.Warn("zone %s has no records, skipping zone creation", zone)
		return
	}

	agg := NewAggregator(zone, d.opts)
	for _, record := range records {
		if rejected := agg.Ingest(record); rejected != nil {
			summary.Rejected = append(summary.Rejected, *rejected)
		}
	}

	specs := agg.Finalize()
	if len(specs) == 0 {
		d.logger.Warn("zone %s has no records left after filtering, skipping zone creation", zone)
		return
	}

	handle, err := d.prov.CreateZone(ctx, zone)
	if err != nil {
		d.logger.Error("failed to create zone %s: %v", zone, err)
		summary.FailedZones = append(summary.FailedZones, zone)
		return
	}
	summary.ZonesCreated++
	d.logger.Info("zone %s: submitting %d resources", zone, len(specs))

	for _, spec := range specs {
		if err := d.prov.CreateRecord(ctx, handle, spec); err != nil {
			d.logger.Error("zone %s: failed to create %s: %v", zone, spec.ResourceID, err)
			summary.RecordErrors++
			continue
		}
		summary.RecordsCreated++
	}
}
