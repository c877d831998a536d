package domain

import "context"

//go:generate mockgen -source=permission.go -destination=permission_mock.go -package=domain

type PermissionStatus string

const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

func (p PermissionStatus) Granted() bool {
	return p == PermissionGranted
}

type PermissionGate interface {
	Status(ctx context.Context) (PermissionStatus, error)
	// Request blocks until the platform answers.
	Request(ctx context.Context) (PermissionStatus, error)
}
