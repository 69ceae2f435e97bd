package tracker

import "github.com/piresc/ridertrack/internal/pkg/models"

// State is the externally visible tracker state. Exactly one variant is
// active at a time: Idle, PermissionDenied, ServicesDisabled or Tracking.
type State interface {
	Name() string
	isState()
}

// Idle means no tracking session is running
type Idle struct{}

// PermissionDenied means the rider declined location access. It stays
// until Start is called again.
type PermissionDenied struct{}

// ServicesDisabled means location services are off on the device
type ServicesDisabled struct{}

// Tracking means a watch is open. LastFix is nil until the first accepted fix.
type Tracking struct {
	LastFix *models.Fix
}

func (Idle) Name() string             { return "idle" }
func (PermissionDenied) Name() string { return "permission_denied" }
func (ServicesDisabled) Name() string { return "services_disabled" }
func (Tracking) Name() string         { return "tracking" }

func (Idle) isState()             {}
func (PermissionDenied) isState() {}
func (ServicesDisabled) isState() {}
func (Tracking) isState()         {}
