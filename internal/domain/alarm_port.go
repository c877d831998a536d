package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=alarm_port.go -destination=alarm_port_mock.go -package=domain

// DeliveryMode identifies which side owns firing a due alert.
type DeliveryMode string

const (
	DeliveryImmediate DeliveryMode = "immediate"
	DeliveryDurable   DeliveryMode = "durable"
)

func (m DeliveryMode) String() string {
	return string(m)
}

const (
	ActionSnooze  = "snooze"
	ActionDismiss = "dismiss"
)

type Alarm struct {
	ID    int32
	Title string
	Body  string
	Delay time.Duration
}

type AlarmPort interface {
	Mode() DeliveryMode
	Schedule(ctx context.Context, alarm Alarm) error
	Cancel(ctx context.Context, id int32) error
	// Backs reports whether a live durable alarm owns the due-crossing for id.
	Backs(id int32) bool
}
