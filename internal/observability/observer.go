// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *logrus.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	logger := logrus.New()
	logger.SetOutput(writer)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	switch level {
	case ObservabilityDebug:
		logger.SetLevel(logrus.DebugLevel)
	case ObservabilityMetrics:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.PanicLevel)
	}

	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Level returns the configured observability level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, target string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Target:     target,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	if data.RequestID == "" {
		data.RequestID = "req-" + uuid.NewString()
	}

	fields := logrus.Fields{
		"component":   data.Component,
		"operation":   data.Operation,
		"request_id":  data.RequestID,
		"success":     data.Success,
		"duration_ms": data.DurationMs,
	}
	if data.Target != "" {
		fields["target"] = data.Target
	}
	if data.Error != "" {
		fields["error"] = data.Error
	}
	if data.MatchCount > 0 {
		fields["match_count"] = data.MatchCount
	}
	for k, v := range data.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)

	// Failures are reported at metrics level, full detail only in debug mode
	switch {
	case !data.Success:
		entry.Warn("operation failed")
	case o.level == ObservabilityDebug:
		entry.Debug("operation completed")
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	Target     string                 `json:"target,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	MatchCount int                    `json:"match_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
