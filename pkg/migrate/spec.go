// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package migrate

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceSpec is the provisioning-ready unit of record creation. One spec
// may bundle several same-key values since some destination providers model
// multi-value records as a single resource with an ordered target list.
type ResourceSpec struct {
	ResourceID string
	Zone       string
	Name       string
	Type       string
	TTL        int
	Targets    []string // first-seen order, append-only

	// Set for MX and SRV only
	Priority int

	// Set for SRV only, decoded from the first value's triplet
	Weight int
	Port   int
}

// recordKind selects the shaping rule applied when a spec is first created
type recordKind int

const (
	kindGeneric recordKind = iota
	kindMX
	kindSRV
)

func kindOf(recordType string) recordKind {
	switch recordType {
	case TypeMX:
		return kindMX
	case TypeSRV:
		return kindSRV
	default:
		return kindGeneric
	}
}

// resourceID derives a unique-within-zone identifier from a record, so that
// repeated merges of the same key resolve to the same spec name
func resourceID(r SourceRecord) string {
	return fmt.Sprintf("%s-%s-%s", r.Name, r.Type, r.Value)
}

// newResourceSpec seeds a spec from the first record seen for a key,
// applying the type-specific field mapping. Shaping happens exactly once;
// later merges only append targets.
func newResourceSpec(r SourceRecord, defaultTTL int) (*ResourceSpec, *RejectedRecord) {
	ttl := defaultTTL
	if r.TTL != nil && *r.TTL > 0 {
		ttl = *r.TTL
	}

	spec := &ResourceSpec{
		ResourceID: resourceID(r),
		Zone:       r.Zone,
		Name:       r.Name,
		Type:       r.Type,
		TTL:        ttl,
	}

	switch kindOf(r.Type) {
	case kindMX:
		// A missing priority on MX is a data error, not a default
		if r.Priority == nil {
			return nil, &RejectedRecord{Record: r, Reason: ReasonMissingPriority}
		}
		spec.Priority = *r.Priority
		spec.Targets = []string{r.Value}

	case kindSRV:
		// The value embeds a "weight port target" triplet; the priority
		// lives in its own field, distinct from the weight token
		if r.Priority == nil {
			return nil, &RejectedRecord{Record: r, Reason: ReasonMissingPriority}
		}
		weight, port, target, err := splitSRVTriplet(r.Value)
		if err != nil {
			return nil, &RejectedRecord{Record: r, Reason: ReasonMalformedSRV}
		}
		spec.Priority = *r.Priority
		spec.Weight = weight
		spec.Port = port
		spec.Targets = []string{target}

	default:
		spec.Targets = []string{r.Value}
	}

	return spec, nil
}

// splitSRVTriplet decodes the "weight port target" encoding used inside an
// SRV record's value field, e.g. "1 443 sipdir.online.lync.com"
func splitSRVTriplet(value string) (weight, port int, target string, err error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return 0, 0, "", fmt.Errorf("expected 3 tokens, got %d", len(fields))
	}
	weight, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("weight %q is not a number", fields[0])
	}
	port, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("port %q is not a number", fields[1])
	}
	return weight, port, fields[2], nil
}
