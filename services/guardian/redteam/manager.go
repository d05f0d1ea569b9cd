// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package redteam

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

// ErrNotRunning is returned when an operation targets an assessment that
// is not in flight.
var ErrNotRunning = errors.New("assessment is not running")

// ErrAlreadyRunning is returned when a target already has an assessment
// in flight. One run at a time keeps risk scores comparable.
var ErrAlreadyRunning = errors.New("target already has a running assessment")

// ProgressEvent is one progress update for a running assessment.
type ProgressEvent struct {
	AssessmentID string `json:"assessment_id"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
	Status       string `json:"status"`
}

type run struct {
	targetID    string
	cancel      context.CancelFunc
	completed   int
	total       int
	subscribers map[int]chan ProgressEvent
	nextSubID   int
}

// Manager owns assessment lifecycles: it launches runs in the background,
// persists their state transitions, tracks progress, and fans progress
// events out to subscribers. Safe for concurrent use.
type Manager struct {
	store *storage.Store

	mu   sync.Mutex
	runs map[string]*run
}

// NewManager builds a manager over the given store.
func NewManager(store *storage.Store) *Manager {
	return &Manager{
		store: store,
		runs:  make(map[string]*run),
	}
}

// Start validates the target, persists a running assessment record, and
// launches the run in the background. The returned assessment carries the
// id used for progress, cancellation, and result lookup.
func (m *Manager) Start(target datatypes.Target, cfg RunConfig) (datatypes.Assessment, error) {
	prober, err := NewProber(target)
	if err != nil {
		return datatypes.Assessment{}, err
	}

	assessment := datatypes.Assessment{
		ID:         uuid.NewString(),
		TargetID:   target.ID,
		TargetName: target.Name,
		Status:     datatypes.AssessmentRunning,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &run{
		targetID:    target.ID,
		cancel:      cancel,
		subscribers: make(map[int]chan ProgressEvent),
	}
	m.mu.Lock()
	for _, existing := range m.runs {
		if target.ID != "" && existing.targetID == target.ID {
			m.mu.Unlock()
			cancel()
			return datatypes.Assessment{}, ErrAlreadyRunning
		}
	}
	m.runs[assessment.ID] = r
	m.mu.Unlock()

	if err := m.store.PutAssessment(assessment); err != nil {
		cancel()
		m.mu.Lock()
		delete(m.runs, assessment.ID)
		m.mu.Unlock()
		return datatypes.Assessment{}, err
	}

	userProgress := cfg.OnProgress
	cfg.OnProgress = func(completed, total int) {
		m.publish(assessment.ID, completed, total)
		if userProgress != nil {
			userProgress(completed, total)
		}
	}

	go m.execute(ctx, assessment, prober, target, cfg)
	return assessment, nil
}

func (m *Manager) execute(ctx context.Context, assessment datatypes.Assessment, prober Prober, target datatypes.Target, cfg RunConfig) {
	report, err := Run(ctx, prober, target, cfg)

	now := time.Now().UTC()
	assessment.CompletedAt = &now
	assessment.Report = report
	switch {
	case err == nil:
		assessment.Status = datatypes.AssessmentCompleted
	case errors.Is(err, context.Canceled):
		assessment.Status = datatypes.AssessmentCancelled
	default:
		assessment.Status = datatypes.AssessmentFailed
		assessment.Error = err.Error()
	}

	if err := m.store.PutAssessment(assessment); err != nil {
		slog.Error("failed to persist assessment result",
			"assessment_id", assessment.ID, "error", err)
	}

	m.finish(assessment.ID, assessment.Status)
}

// publish updates progress counters and notifies subscribers. Slow
// subscribers drop events rather than stalling the run.
func (m *Manager) publish(id string, completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return
	}
	r.completed, r.total = completed, total

	event := ProgressEvent{
		AssessmentID: id,
		Completed:    completed,
		Total:        total,
		Status:       datatypes.AssessmentRunning,
	}
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// finish emits the terminal event, closes subscriber channels, and drops
// the run entry.
func (m *Manager) finish(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return
	}
	event := ProgressEvent{
		AssessmentID: id,
		Completed:    r.completed,
		Total:        r.total,
		Status:       status,
	}
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
		close(ch)
	}
	delete(m.runs, id)
}

// Progress reports completion counters for a running assessment. ok is
// false once the run has finished (or never existed).
func (m *Manager) Progress(id string) (completed, total int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.runs[id]
	if !found {
		return 0, 0, false
	}
	return r.completed, r.total, true
}

// Cancel aborts a running assessment. The run's goroutine persists the
// cancelled record with whatever probes completed.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	r, ok := m.runs[id]
	m.mu.Unlock()

	if !ok {
		return ErrNotRunning
	}
	r.cancel()
	return nil
}

// Subscribe registers a progress listener for a running assessment. The
// channel closes when the run finishes; the returned func unsubscribes
// early. ok is false when the assessment is not in flight.
func (m *Manager) Subscribe(id string) (events <-chan ProgressEvent, unsubscribe func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.runs[id]
	if !found {
		return nil, nil, false
	}

	ch := make(chan ProgressEvent, 16)
	subID := r.nextSubID
	r.nextSubID++
	r.subscribers[subID] = ch

	unsubscribe = func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if cur, still := m.runs[id]; still {
			if _, active := cur.subscribers[subID]; active {
				delete(cur.subscribers, subID)
				close(ch)
			}
		}
	}
	return ch, unsubscribe, true
}
