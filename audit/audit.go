// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit logs engine events to a logrus.Logger: catalog table
// registrations, planner rejections, per-batch execution traces and one
// entry per executed query. The engine has no authentication or session
// concept, so the rendered logical plan stands in for a raw SQL query
// string. Successful registrations and queries log at Info, failures at
// Warn (registration, planning) or Error (execution), batch traces at
// Debug.
package audit

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	queryLogMessage        = "query executed"
	queryFailedMessage     = "query failed"
	planRejectedMessage    = "plan rejected"
	tableRegisteredMessage = "table registered"
	tableRejectedMessage   = "table registration failed"
	batchMessage           = "batch emitted"
)

// Logger records one structured entry per engine event. A nil *Logger
// (as built by NewLogger(nil)) is a no-op, per Engine's "nil disables
// auditing" contract.
type Logger struct {
	log *logrus.Entry
}

// NewLogger wraps l, tagging every entry with system=query-engine.
// l == nil disables auditing entirely: every method on the returned
// Logger becomes a no-op.
func NewLogger(l *logrus.Logger) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{log: l.WithField("system", "query-engine")}
}

// Query logs one query's plan, row count, duration and outcome: Info on
// success, Error on failure. A nil receiver is a no-op.
func (a *Logger) Query(planDescription string, rows int, d time.Duration, err error) {
	if a == nil {
		return
	}
	entry := a.log.WithFields(logrus.Fields{
		"action":   "query",
		"plan":     planDescription,
		"rows":     rows,
		"duration": d,
		"success":  err == nil,
	})
	if err != nil {
		entry.WithField("err", err).Error(queryFailedMessage)
		return
	}
	entry.Info(queryLogMessage)
}

// PlanningFailed logs a planner rejection at Warn.
func (a *Logger) PlanningFailed(planDescription string, err error) {
	if a == nil {
		return
	}
	a.log.WithFields(logrus.Fields{
		"action": "plan",
		"plan":   planDescription,
		"err":    err,
	}).Warn(planRejectedMessage)
}

// TableRegistration logs a catalog mutation: Info on success, Warn on
// failure.
func (a *Logger) TableRegistration(name, path string, err error) {
	if a == nil {
		return
	}
	entry := a.log.WithFields(logrus.Fields{
		"action": "register_table",
		"table":  name,
		"path":   path,
	})
	if err != nil {
		entry.WithField("err", err).Warn(tableRejectedMessage)
		return
	}
	entry.Info(tableRegisteredMessage)
}

// Batch traces one emitted record batch at Debug.
func (a *Logger) Batch(index, rows int) {
	if a == nil {
		return
	}
	a.log.WithFields(logrus.Fields{
		"action": "batch",
		"batch":  index,
		"rows":   rows,
	}).Debug(batchMessage)
}
