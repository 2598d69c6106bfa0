// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

// Package migrate implements the record aggregation and normalization engine
// that turns raw registrar zone data into provider-ready resources.
package migrate

import (
	"fmt"
	"strconv"
)

// Record types accepted by the destination provider
const (
	TypeA         = "A"
	TypeAAAA      = "AAAA"
	TypeCNAME     = "CNAME"
	TypeTXT       = "TXT"
	TypeMX        = "MX"
	TypeSRV       = "SRV"
	TypeCAA       = "CAA"
	TypeNS        = "NS"
	TypeAkamaiCDN = "AKAMAICDN"
)

// supportedTypes is the set of record types the destination can hold.
// Anything else is rejected rather than silently dropped.
var supportedTypes = map[string]bool{
	TypeA:         true,
	TypeAAAA:      true,
	TypeCNAME:     true,
	TypeTXT:       true,
	TypeMX:        true,
	TypeSRV:       true,
	TypeCAA:       true,
	TypeNS:        true,
	TypeAkamaiCDN: true,
}

// SourceRecord is a normalized view of one raw DNS entry, independent of
// whether it came from a CSV row or an API JSON object. Priority and TTL
// use pointers because absence is distinct from zero.
type SourceRecord struct {
	Zone     string
	Name     string
	Type     string
	Value    string
	Priority *int
	TTL      *int
}

// String renders the record for logs and the reject report
func (r SourceRecord) String() string {
	prio := "-"
	if r.Priority != nil {
		prio = strconv.Itoa(*r.Priority)
	}
	return fmt.Sprintf("%s %s %s %q (prio %s)", r.Zone, r.Name, r.Type, r.Value, prio)
}

// AggregationKey identifies the resource a record merges into. Records
// sharing a key become one resource with multiple targets.
type AggregationKey struct {
	Zone     string
	Name     string
	Type     string
	Priority string // formatted priority, empty when absent
}

// keyFor computes the aggregation key for a record
func keyFor(r SourceRecord) AggregationKey {
	prio := ""
	if r.Priority != nil {
		prio = strconv.Itoa(*r.Priority)
	}
	return AggregationKey{
		Zone:     r.Zone,
		Name:     r.Name,
		Type:     r.Type,
		Priority: prio,
	}
}

// RejectReason explains why a record was not migrated
type RejectReason string

const (
	ReasonUnsupportedType RejectReason = "unsupported record type"
	ReasonValueTooLong    RejectReason = "value exceeds maximum length"
	ReasonApexNS          RejectReason = "apex NS record is managed by zone creation"
	ReasonMissingPriority RejectReason = "record type requires a priority"
	ReasonMalformedSRV    RejectReason = "SRV value is not a 'weight port target' triplet"
	ReasonShortRow        RejectReason = "row has too few fields"
)

// RejectedRecord pairs a record with the rule it failed. Rejections are
// collected and surfaced to the operator, never discarded silently.
type RejectedRecord struct {
	Record SourceRecord
	Reason RejectReason
}

func (r RejectedRecord) String() string {
	return fmt.Sprintf("%s: %s", r.Record, r.Reason)
}

// IntPtr returns a pointer to v, for building records with optional fields
func IntPtr(v int) *int {
	return &v
}
