// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package migrate

import (
	"zoneferry/pkg/log"
)

// Options controls acceptance filtering and normalization
type Options struct {
	// DefaultTTL is applied when a record carries no TTL (or zero)
	DefaultTTL int

	// MaxValueLength rejects values the provisioning API would refuse
	MaxValueLength int

	// DedupeTargets drops exact duplicate values within one key instead
	// of appending them again. Off by default: the source data decides.
	DedupeTargets bool

	// LogLevel overrides the global log level for aggregation messages
	LogLevel string
}

// Aggregator converts a stream of SourceRecord into a set of ResourceSpec
// for one zone, applying acceptance filtering and type-specific shaping.
// Not safe for concurrent use; each zone gets its own instance.
type Aggregator struct {
	zone   string
	opts   Options
	specs  map[AggregationKey]*ResourceSpec
	order  []AggregationKey
	logger *log.ScopedLogger
}

// NewAggregator creates an aggregator for a single zone
func NewAggregator(zone string, opts Options) *Aggregator {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 3600
	}
	if opts.MaxValueLength <= 0 {
		opts.MaxValueLength = 250
	}
	return &Aggregator{
		zone:   zone,
		opts:   opts,
		specs:  make(map[AggregationKey]*ResourceSpec),
		logger: log.NewScopedLogger("[migrate/"+zone+"]", opts.LogLevel),
	}
}

// Accept checks a record against the acceptance rules. It returns nil when
// the record may be ingested, or the rejection otherwise.
func (a *Aggregator) Accept(r SourceRecord) *RejectedRecord {
	if !supportedTypes[r.Type] {
		return &RejectedRecord{Record: r, Reason: ReasonUnsupportedType}
	}
	if len(r.Value) >= a.opts.MaxValueLength {
		return &RejectedRecord{Record: r, Reason: ReasonValueTooLong}
	}
	// Apex NS records are managed implicitly by zone creation and must
	// not be resubmitted
	if r.Type == TypeNS && r.Name == r.Zone {
		return &RejectedRecord{Record: r, Reason: ReasonApexNS}
	}
	return nil
}

// Ingest merges an accepted record into the aggregation state. The first
// record for a key seeds a new spec with the type-specific shaping; later
// records only append their value to the existing spec's targets.
func (a *Aggregator) Ingest(r SourceRecord) *RejectedRecord {
	if rejected := a.Accept(r); rejected != nil {
		a.logger.Debug("rejected: %s", rejected)
		return rejected
	}

	key := keyFor(r)
	spec, exists := a.specs[key]
	if !exists {
		spec, rejected := newResourceSpec(r, a.opts.DefaultTTL)
		if rejected != nil {
			a.logger.Debug("rejected: %s", rejected)
			return rejected
		}
		a.specs[key] = spec
		a.order = append(a.order, key)
		a.logger.Trace("new resource %s", spec.ResourceID)
		return nil
	}

	if a.opts.DedupeTargets {
		for _, t := range spec.Targets {
			if t == r.Value {
				a.logger.Debug("duplicate target %q for %s, skipping", r.Value, spec.ResourceID)
				return nil
			}
		}
	}

	if r.Type == TypeSRV {
		// Only the first SRV value for a key is decoded into the
		// weight/port/target fields; further values are kept verbatim so
		// nothing is lost, but the provider may not accept them
		a.logger.Warn("additional SRV value %q for %s appended undecoded", r.Value, spec.ResourceID)
	}

	spec.Targets = append(spec.Targets, r.Value)
	a.logger.Trace("merged %q into %s (%d targets)", r.Value, spec.ResourceID, len(spec.Targets))
	return nil
}

// Finalize returns the accumulated specs in first-seen order, ready for
// submission once the zone itself has been created
func (a *Aggregator) Finalize() []*ResourceSpec {
	specs := make([]*ResourceSpec, 0, len(a.order))
	for _, key := range a.order {
		specs = append(specs, a.specs[key])
	}
	return specs
}
