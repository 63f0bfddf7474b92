// Package service defines the lifecycle contract between a host application
// and its infrastructure subsystems, such as the audio plugin.
package service

// Service is the lifecycle interface a host scheduler drives.
//
// Lifecycle:
//  1. Construction (via the package's New)
//  2. Init(args...) - configuration (settings structs, config file paths)
//  3. Start() - connect devices, launch background goroutines
//  4. [runtime operation, e.g. per-tick updates]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}

// ResourcePublisher is a callback for services to contribute resources to the
// host; the receiver handles type routing.
type ResourcePublisher func(resource any)

// ResourceContributor is implemented by services that expose APIs to the host
// layer. Optional interface - services not implementing it are skipped.
type ResourceContributor interface {
	Contribute(publish ResourcePublisher)
}
