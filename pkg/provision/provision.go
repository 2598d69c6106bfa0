// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

// Package provision holds the destination side of a migration: the
// provisioner registry and the concrete provider implementations.
package provision

import (
	"zoneferry/pkg/migrate"

	"fmt"
	"sync"
)

// Provisioner creates zones and records on the destination provider. It
// extends the driver's view with naming and config validation.
type Provisioner interface {
	migrate.Provisioner

	// Name returns the provider name
	Name() string

	// Validate validates the provider configuration
	Validate() error
}

// Constructor is a function that creates a new provisioner instance
type Constructor func(profileName string, options map[string]string) (Provisioner, error)

// registry holds all registered provisioners
var (
	registry      = make(map[string]Constructor)
	registryMutex sync.RWMutex
)

// Register registers a new provisioner type
func Register(name string, constructor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[name] = constructor
}

// Get creates a new instance of the specified provisioner
func Get(name, profileName string, options map[string]string) (Provisioner, error) {
	registryMutex.RLock()
	constructor, exists := registry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provisioner '%s'. Available: %v", name, Available())
	}
	return constructor(profileName, options)
}

// Available returns a list of all registered provisioner names
func Available() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
