// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"zoneferry/pkg/migrate"

	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestWriteRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejects.yml")

	rejects := []migrate.RejectedRecord{
		{
			Record: migrate.SourceRecord{
				Zone:  "grinwis.com",
				Name:  "grinwis.com",
				Type:  migrate.TypeNS,
				Value: "ns1.openprovider.nl",
			},
			Reason: migrate.ReasonApexNS,
		},
		{
			Record: migrate.SourceRecord{
				Zone:     "grinwis.com",
				Name:     "mail.grinwis.com",
				Type:     migrate.TypeMX,
				Value:    "mx1.example.net",
				Priority: migrate.IntPtr(10),
			},
			Reason: migrate.ReasonValueTooLong,
		},
	}
	if err := WriteRejects(path, rejects); err != nil {
		t.Fatalf("WriteRejects() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var doc struct {
		GeneratedAt string `yaml:"generated_at"`
		Count       int    `yaml:"count"`
		Rejected    []struct {
			Zone     string `yaml:"zone"`
			Name     string `yaml:"name"`
			Type     string `yaml:"type"`
			Value    string `yaml:"value"`
			Priority *int   `yaml:"priority"`
			Reason   string `yaml:"reason"`
		} `yaml:"rejected"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}

	if doc.Count != 2 {
		t.Errorf("count = %d, want 2", doc.Count)
	}
	if len(doc.Rejected) != 2 {
		t.Fatalf("rejected entries = %d, want 2", len(doc.Rejected))
	}
	if doc.GeneratedAt == "" {
		t.Error("generated_at missing")
	}
	if doc.Rejected[0].Reason != string(migrate.ReasonApexNS) {
		t.Errorf("first reason = %q, want %q", doc.Rejected[0].Reason, migrate.ReasonApexNS)
	}
	if doc.Rejected[0].Priority != nil {
		t.Error("NS entry should have no priority")
	}
	if doc.Rejected[1].Priority == nil || *doc.Rejected[1].Priority != 10 {
		t.Error("MX entry should keep its priority")
	}
}

func TestWriteRejectsEmptyStillWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejects.yml")

	if err := WriteRejects(path, nil); err != nil {
		t.Fatalf("WriteRejects() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("empty run should still produce a report file: %v", err)
	}

	var doc struct {
		Count int `yaml:"count"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if doc.Count != 0 {
		t.Errorf("count = %d, want 0", doc.Count)
	}
}
