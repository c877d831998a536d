//go:build gcloud

package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate is only called for durable delivery, which registers every alarm
// as a Cloud Tasks task.
func (c *TaskQueueConfig) Validate() error {
	var errs []error

	if c.GCloudProjectID == "" {
		errs = append(errs, errors.New("GCLOUD_PROJECT_ID is required for durable delivery"))
	}
	if c.GCloudLocationID == "" {
		errs = append(errs, errors.New("GCLOUD_LOCATION_ID is required for durable delivery"))
	}
	if c.GCloudQueueID == "" {
		errs = append(errs, errors.New("GCLOUD_QUEUE_ID is required for durable delivery"))
	}

	switch u, err := url.Parse(c.GCloudTargetURL); {
	case c.GCloudTargetURL == "":
		errs = append(errs, errors.New("GCLOUD_TARGET_URL is required for durable delivery"))
	case err != nil || u.Scheme != "https":
		errs = append(errs, fmt.Errorf("GCLOUD_TARGET_URL must be an https URL: %q", c.GCloudTargetURL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("task queue configuration errors: %w", errors.Join(errs...))
	}

	return nil
}
