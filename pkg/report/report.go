// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

// Package report writes the rejected-record report for operator review.
package report

import (
	"zoneferry/pkg/migrate"

	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// rejectEntry is one rejected record in the report file
type rejectEntry struct {
	Zone     string `yaml:"zone"`
	Name     string `yaml:"name,omitempty"`
	Type     string `yaml:"type,omitempty"`
	Value    string `yaml:"value"`
	Priority *int   `yaml:"priority,omitempty"`
	Reason   string `yaml:"reason"`
}

// rejectReport is the document written to the report file
type rejectReport struct {
	GeneratedAt string        `yaml:"generated_at"`
	Count       int           `yaml:"count"`
	Rejected    []rejectEntry `yaml:"rejected"`
}

// WriteRejects writes all rejections of a run to a YAML file. An empty
// reject list still produces a file so operators can tell "no rejects"
// from "no report".
func WriteRejects(path string, rejects []migrate.RejectedRecord) error {
	doc := rejectReport{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Count:       len(rejects),
		Rejected:    make([]rejectEntry, 0, len(rejects)),
	}
	for _, r := range rejects {
		doc.Rejected = append(doc.Rejected, rejectEntry{
			Zone:     r.Record.Zone,
			Name:     r.Record.Name,
			Type:     r.Record.Type,
			Value:    r.Record.Value,
			Priority: r.Record.Priority,
			Reason:   string(r.Reason),
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal reject report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write reject report: %w", err)
	}
	return nil
}
