package taskqueue

import "time"

// NotificationTask is the payload delivered back to the alarm target when the
// queue fires. TaskID doubles as the queue-side task name.
type NotificationTask struct {
	TaskID     string    `json:"-"`
	ScheduleAt time.Time `json:"-"`

	ReminderID    int32    `json:"reminder_id"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Channel       string   `json:"channel"`
	Importance    string   `json:"importance"`
	BypassSilence bool     `json:"bypass_silence"`
	Actions       []string `json:"actions"`
	AutoCancel    bool     `json:"auto_cancel"`
	WhileIdle     bool     `json:"while_idle"`
	FireAtMillis  int64    `json:"fire_at"`
}

type TaskResponse struct {
	Name         string    `json:"name"`
	ScheduleTime time.Time `json:"schedule_time"`
	CreateTime   time.Time `json:"create_time"`
}

type PrimindTaskRequest struct {
	Task PrimindTask `json:"task"`
}

type PrimindTask struct {
	Name         string             `json:"name,omitempty"`
	HTTPRequest  PrimindHTTPRequest `json:"httpRequest"`
	ScheduleTime string             `json:"scheduleTime,omitempty"`
}

type PrimindHTTPRequest struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type PrimindTaskResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}
