package aetherdb

import (
	"fmt"
	"sync"
)

// The process-wide driver registry. The model layer initializes it once at
// startup and reads it for the process lifetime.
var (
	registryMu   sync.Mutex
	activeDriver DatabaseDriver
)

// Initialize sets the process-wide active driver. Initializing twice is an
// error; use ResetRegistry between tests.
func Initialize(driver DatabaseDriver) error {
	if driver == nil {
		return fmt.Errorf("cannot initialize registry with a nil driver")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if activeDriver != nil {
		return fmt.Errorf("driver registry already initialized")
	}
	activeDriver = driver
	return nil
}

// ActiveDriver returns the registered driver.
func ActiveDriver() (DatabaseDriver, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if activeDriver == nil {
		return nil, fmt.Errorf("driver registry not initialized")
	}
	return activeDriver, nil
}

// ResetRegistry clears the active driver without closing it. The caller
// owns the driver lifecycle.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	activeDriver = nil
}
