package completion

import (
	"context"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/logging"
)

// Service renders prompts and forwards them to a Provider.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logging.OrNop(logger).Named("completion")}
}

// Run validates the request before any network call is made.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	system, user, err := BuildPrompts(req)
	if err != nil {
		return Result{}, err
	}
	result, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn("completion failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		return Result{}, err
	}
	return result, nil
}
