package service

import (
	"context"
	"fmt"

	"Orion_Tube/internal/repository"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, viewerID, creatorID uint64) error
	Unsubscribe(ctx context.Context, viewerID, creatorID uint64) error
}

type subscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{subRepo: subRepo, userRepo: userRepo}
}

// 订阅：1、不能订阅自己 2、创作者必须存在 3、重复订阅由主键冲突识别
func (s *subscriptionService) Subscribe(ctx context.Context, viewerID, creatorID uint64) error {
	if viewerID == creatorID {
		return fmt.Errorf("%w: 不能订阅自己", ErrBadRequest)
	}
	if _, err := s.userRepo.FindByID(ctx, creatorID); err != nil {
		return notFoundOr(err, "用户不存在")
	}
	if err := s.subRepo.Create(ctx, viewerID, creatorID); err != nil {
		return conflictOr(err, "已经订阅过了")
	}
	return nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, viewerID, creatorID uint64) error {
	if viewerID == creatorID {
		return fmt.Errorf("%w: 不能取消订阅自己", ErrBadRequest)
	}
	deleted, err := s.subRepo.Delete(ctx, viewerID, creatorID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: 没有订阅该用户", ErrNotFound)
	}
	return nil
}
