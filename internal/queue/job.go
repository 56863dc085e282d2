// Package queue runs marking jobs consumed from Kafka and publishes their
// outcomes to a result topic.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-marker-mcp/internal/marker"
	"github.com/ironsheep/image-marker-mcp/internal/wire"
)

// Job kinds.
const (
	JobText    = "text"
	JobImage   = "image"
	JobObjects = "objects"
)

// Job is the JSON payload of a jobs-topic message. The field matching Kind
// carries the arguments.
type Job struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	Text    *wire.TextArgs    `json:"text,omitempty"`
	Image   *wire.ImageArgs   `json:"image,omitempty"`
	Objects *wire.ObjectsArgs `json:"objects,omitempty"`
}

// Result is the JSON payload published for every job. Path is set on
// success; ErrorKind and Error on failure.
type Result struct {
	ID        string `json:"id"`
	Path      string `json:"path,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ParseJob decodes a message value.
func ParseJob(data []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to parse job: %w", err)
	}
	return job, nil
}

// Request converts the job into a marker request writing under dir.
func (j Job) Request(dir string) (marker.Request, error) {
	var (
		req marker.Request
		err error
	)
	switch j.Kind {
	case JobText:
		if j.Text == nil {
			return req, fmt.Errorf("job %s: missing text arguments", j.ID)
		}
		req, err = j.Text.Request(dir)
	case JobImage:
		if j.Image == nil {
			return req, fmt.Errorf("job %s: missing image arguments", j.ID)
		}
		req, err = j.Image.Request(dir)
	case JobObjects:
		if j.Objects == nil {
			return req, fmt.Errorf("job %s: missing objects arguments", j.ID)
		}
		req, err = j.Objects.Request(dir)
	default:
		return req, fmt.Errorf("job %s: unknown kind %q", j.ID, j.Kind)
	}
	req.ID = j.ID
	return req, err
}

// resultOf turns an outcome into its published form.
func resultOf(o marker.Outcome) Result {
	if o.Err != nil {
		body := wire.ErrorOf(o.Err)
		return Result{ID: o.ID, ErrorKind: body.Kind, Error: body.Message}
	}
	return Result{ID: o.ID, Path: o.Path}
}
