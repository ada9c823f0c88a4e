package control

import (
	"context"
	"fmt"

	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/store"
	"go.uber.org/zap"
)

// Service mutates actuator state optimistically: the view model flips
// first, the upstream write follows. Uncertainty is always resolved by a
// trusted refetch, never by assuming the inverse of the optimistic value,
// a concurrent tick or a second toggle may have moved the true state.
type Service struct {
	client *api.Client
	store  *store.Store
	logger *zap.Logger
}

func NewService(client *api.Client, st *store.Store, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		store:  st,
		logger: logger,
	}
}

// Toggle flips one output by id. The local flip happens before the remote
// call resolves; the desired value sent upstream is whatever the view held
// at call time, so rapid repeated toggles compose instead of clobbering.
func (s *Service) Toggle(ctx context.Context, deviceID string, outputID int64) error {
	desired, ok := s.store.ToggleOutput(deviceID, outputID)
	if !ok {
		return fmt.Errorf("output %d not found on device %s", outputID, deviceID)
	}

	if _, err := s.client.SetOutputState(ctx, outputID, desired); err != nil {
		s.logger.Warn("Output toggle not confirmed, reconciling via refetch",
			zap.String("device", deviceID),
			zap.Int64("output", outputID),
			zap.Error(err))
		s.refreshOutputs(ctx, deviceID)
		return err
	}

	return nil
}

// AddOutput creates an actuator and refetches the registry. The server
// assigns the id and the initial state; synthesizing the record locally
// would risk colliding with it.
func (s *Service) AddOutput(ctx context.Context, deviceID, name string, gpioPin int) error {
	if _, err := s.client.CreateOutput(ctx, deviceID, name, gpioPin); err != nil {
		return err
	}

	s.refreshOutputs(ctx, deviceID)
	return nil
}

// refreshOutputs pulls the authoritative registry into the view. A failed
// refetch is logged and left to the next poll tick to self-heal.
func (s *Service) refreshOutputs(ctx context.Context, deviceID string) {
	outputs, err := s.client.ListOutputs(ctx, deviceID)
	if err != nil {
		s.logger.Warn("Output reconciliation fetch failed, next tick will retry",
			zap.String("device", deviceID),
			zap.Error(err))
		return
	}
	s.store.SetOutputs(deviceID, outputs)
}
