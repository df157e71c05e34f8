package lifecycle

import (
	"context"
	"time"

	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Store is the persistence the machine commits through.
type Store interface {
	ApplyTransition(ctx context.Context, id string, from models.RequestStatus, expectedProvider string, set bson.M, unset []string) (*models.ServiceRequest, error)
	AppendRejection(ctx context.Context, id string, rec models.RejectionRecord) (*models.ServiceRequest, bool, error)
}

// Machine plans transitions and commits them with a conditional write so
// that of two concurrent transitions from the same state exactly one wins.
type Machine struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewMachine(store Store, logger *zap.Logger) *Machine {
	return &Machine{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Result is the outcome of Apply.
type Result struct {
	Request *models.ServiceRequest
	From    models.RequestStatus
	// Changed is false when the event was an idempotent no-op, such as a
	// repeated rejection by the same provider.
	Changed bool
}

// Apply fires event on a request the caller has already loaded. A
// concurrent writer that moved the request first produces a
// ConcurrencyConflict error, which also matches ErrInvalidTransition.
func (m *Machine) Apply(ctx context.Context, req *models.ServiceRequest, event Event, in Input) (*Result, error) {
	t, err := Plan(req, event, in, m.now())
	if err != nil {
		return nil, err
	}

	if t.Rejection != nil {
		updated, appended, err := m.store.AppendRejection(ctx, req.ID, *t.Rejection)
		if err != nil {
			return nil, err
		}
		if !appended {
			m.logger.Debug("Duplicate rejection ignored",
				zap.String("requestId", req.ID),
				zap.String("providerId", t.Rejection.ProviderID),
			)
		}
		return &Result{Request: updated, From: t.From, Changed: appended}, nil
	}

	updated, err := m.store.ApplyTransition(ctx, req.ID, t.From, t.ExpectedProvider, t.Set, t.Unset)
	if err != nil {
		m.logger.Info("Transition not applied",
			zap.String("requestId", req.ID),
			zap.String("event", string(event)),
			zap.String("from", string(t.From)),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Info("Request transitioned",
		zap.String("requestId", req.ID),
		zap.String("event", string(event)),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
	)
	return &Result{Request: updated, From: t.From, Changed: true}, nil
}
