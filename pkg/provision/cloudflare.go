// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package provision

import (
	"zoneferry/pkg/log"
	"zoneferry/pkg/migrate"
	"zoneferry/pkg/util"

	"context"
	"fmt"
	"strings"

	"github.com/cloudflare/cloudflare-go"
)

func init() {
	Register("cloudflare", NewCloudflareProvisioner)
}

// CloudflareProvisioner creates zones and records through the Cloudflare API
type CloudflareProvisioner struct {
	client    *cloudflare.API
	accountID string
	logger    *log.ScopedLogger
}

// NewCloudflareProvisioner creates a Cloudflare provisioner.
// Required options: token (supports file:// and env:// references),
// account_id (the destination account, the equivalent of a contract id).
func NewCloudflareProvisioner(profileName string, options map[string]string) (Provisioner, error) {
	token := util.ReadSecretValue(options["token"])
	if token == "" {
		return nil, fmt.Errorf("cloudflare provisioner requires 'token' option")
	}
	accountID := util.ReadSecretValue(options["account_id"])
	if accountID == "" {
		return nil, fmt.Errorf("cloudflare provisioner requires 'account_id' option")
	}

	api, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare client: %v", err)
	}

	logPrefix := fmt.Sprintf("[provision/cloudflare/%s]", profileName)
	logger := log.NewScopedLogger(logPrefix, options["log_level"])
	logger.Debug("Cloudflare provisioner initialized (account %s)", util.MaskSensitiveValue(accountID))

	return &CloudflareProvisioner{
		client:    api,
		accountID: accountID,
		logger:    logger,
	}, nil
}

// CreateZone creates a full-setup zone in the configured account and
// returns its zone ID as the handle for record submission
func (c *CloudflareProvisioner) CreateZone(ctx context.Context, zone string) (migrate.ZoneHandle, error) {
	created, err := c.client.CreateZone(ctx, zone, false, cloudflare.Account{ID: c.accountID}, "full")
	if err != nil {
		return "", fmt.Errorf("failed to create zone %s: %v", zone, err)
	}
	c.logger.Info("created zone %s (id %s)", zone, created.ID)
	return migrate.ZoneHandle(created.ID), nil
}

// CreateRecord submits one resource spec. Multi-value specs become one
// Cloudflare record per target since the API models one content per record.
func (c *CloudflareProvisioner) CreateRecord(ctx context.Context, handle migrate.ZoneHandle, spec *migrate.ResourceSpec) error {
	rc := cloudflare.ZoneIdentifier(string(handle))

	if spec.Type == migrate.TypeSRV {
		return c.createSRVRecord(ctx, rc, spec)
	}

	for _, target := range spec.Targets {
		params := cloudflare.CreateDNSRecordParams{
			Type:    spec.Type,
			Name:    spec.Name,
			Content: target,
			TTL:     spec.TTL,
		}
		if spec.Type == migrate.TypeMX {
			priority := uint16(spec.Priority)
			params.Priority = &priority
		}

		if _, err := c.client.CreateDNSRecord(ctx, rc, params); err != nil {
			return fmt.Errorf("failed to create %s record %s -> %s: %v", spec.Type, spec.Name, target, err)
		}
		c.logger.Info("created record: %s %s -> %s", spec.Name, spec.Type, target)
	}
	return nil
}

// createSRVRecord submits the decoded SRV triplet. Cloudflare wants the
// service and protocol labels split out of the record name.
func (c *CloudflareProvisioner) createSRVRecord(ctx context.Context, rc *cloudflare.ResourceContainer, spec *migrate.ResourceSpec) error {
	labels := strings.SplitN(spec.Name, ".", 3)
	if len(labels) < 3 || !strings.HasPrefix(labels[0], "_") || !strings.HasPrefix(labels[1], "_") {
		return fmt.Errorf("SRV record name %q does not follow _service._proto.name", spec.Name)
	}

	params := cloudflare.CreateDNSRecordParams{
		Type: spec.Type,
		Name: spec.Name,
		TTL:  spec.TTL,
		Data: map[string]interface{}{
			"service":  labels[0],
			"proto":    labels[1],
			"name":     labels[2],
			"priority": spec.Priority,
			"weight":   spec.Weight,
			"port":     spec.Port,
			"target":   spec.Targets[0],
		},
	}

	if _, err := c.client.CreateDNSRecord(ctx, rc, params); err != nil {
		return fmt.Errorf("failed to create SRV record %s: %v", spec.Name, err)
	}
	c.logger.Info("created record: %s SRV -> %s:%d", spec.Name, spec.Targets[0], spec.Port)

	if len(spec.Targets) > 1 {
		// Only the first triplet was decoded during aggregation
		c.logger.Warn("SRV %s carries %d extra undecoded values, submitted only the first", spec.Name, len(spec.Targets)-1)
	}
	return nil
}

// Name returns the provider name
func (c *CloudflareProvisioner) Name() string {
	return "cloudflare"
}

// Validate validates the provider configuration
func (c *CloudflareProvisioner) Validate() error {
	if c.client == nil {
		return fmt.Errorf("cloudflare client not initialized")
	}

	// Test the connection by listing zones
	if _, err := c.client.ListZones(context.Background()); err != nil {
		return fmt.Errorf("failed to validate Cloudflare connection: %v", err)
	}

	c.logger.Debug("Cloudflare provisioner validation successful")
	return nil
}
