// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package openprovider

import (
	"zoneferry/pkg/migrate"

	"context"
)

// Source adapts the API client to the migration driver's Source interface
type Source struct {
	client *Client
}

// NewSource wraps an authenticated client
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) Zones(ctx context.Context) ([]string, error) {
	return s.client.ListZones(ctx)
}

func (s *Source) Records(ctx context.Context, zone string) ([]migrate.SourceRecord, []migrate.RejectedRecord, error) {
	records, err := s.client.ListRecords(ctx, zone)
	if err != nil {
		return nil, nil, err
	}
	return records, nil, nil
}
