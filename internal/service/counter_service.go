package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/pkg/logger"
)

// CounterService 计数对账入口（CLI 与管理接口共用），只按需触发
type CounterService interface {
	Recompute(ctx context.Context, kind, ownerID string) (int64, error)
	// Reconcile kind 为 "all" 时依次对账全部种类
	Reconcile(ctx context.Context, kind string, batchSize int) ([]*repository.ReconcileResult, error)
	// RecomputeUnread 按未读消息重算会话内某一方的未读数
	RecomputeUnread(ctx context.Context, sessionID, userID string) (int64, error)
}

type counterService struct {
	counters repository.CounterRepository
	sessions repository.SessionRepository
}

func NewCounterService(counters repository.CounterRepository, sessions repository.SessionRepository) CounterService {
	return &counterService{counters: counters, sessions: sessions}
}

func (s *counterService) Recompute(ctx context.Context, kind, ownerID string) (int64, error) {
	k, err := repository.ParseCounterKind(kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s.counters.Recompute(ctx, k, ownerID)
}

func (s *counterService) Reconcile(ctx context.Context, kind string, batchSize int) ([]*repository.ReconcileResult, error) {
	kinds := repository.CounterKinds()
	if kind != "all" {
		k, err := repository.ParseCounterKind(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		kinds = []repository.CounterKind{k}
	}
	results := make([]*repository.ReconcileResult, 0, len(kinds))
	for _, k := range kinds {
		start := time.Now()
		res, err := s.counters.ReconcileAll(ctx, k, batchSize)
		if err != nil {
			return results, err
		}
		logger.Info("counter reconciled",
			zap.String("kind", string(k)),
			zap.Int("scanned", res.Scanned),
			zap.Int("repaired", res.Repaired),
			zap.Duration("cost", time.Since(start)))
		results = append(results, res)
	}
	return results, nil
}

func (s *counterService) RecomputeUnread(ctx context.Context, sessionID, userID string) (int64, error) {
	if sessionID == "" || userID == "" {
		return 0, fmt.Errorf("%w: session and user required", ErrInvalidArgument)
	}
	n, err := s.sessions.RecomputeUnread(ctx, sessionID, userID)
	if err != nil {
		return 0, err
	}
	logger.Info("unread recomputed", zap.String("session", sessionID), zap.String("user", userID), zap.Int64("unread", n))
	return n, nil
}
