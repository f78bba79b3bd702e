package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/repository"
	"Orion_Tube/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreatorProfile 创作者主页
type CreatorProfile struct {
	User             model.User
	SubscriberCount  int64
	VideoCount       int64
	ViewerSubscribed bool
}

// TokenIssuer 签发登录令牌
type TokenIssuer interface {
	GenerateToken(userID uint64, username string) (string, error)
}

// 用户服务接口：1、注册 2、登录 3、个人信息 4、创作者主页
type UserService interface {
	Register(ctx context.Context, username, password, imageURL string) (*model.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetProfile(ctx context.Context, userID uint64) (*model.User, error)
	GetCreator(ctx context.Context, creatorID, viewerID uint64) (*CreatorProfile, error)
}

// 用户服务包装
type userService struct {
	userRepo  repository.UserRepository
	videoRepo repository.VideoRepository
	subRepo   repository.SubscriptionRepository
	tokens    TokenIssuer
}

var _ TokenIssuer = (*jwt.Service)(nil)

// 包装函数
func NewUserService(userRepo repository.UserRepository, videoRepo repository.VideoRepository, subRepo repository.SubscriptionRepository, tokens TokenIssuer) UserService {
	return &userService{userRepo: userRepo, videoRepo: videoRepo, subRepo: subRepo, tokens: tokens}
}

// 注册逻辑：1、校验参数 2、密码加密存储 3、插入数据库，重名由唯一索引兜底
func (s *userService) Register(ctx context.Context, username, password, imageURL string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: 用户名和密码不能为空", ErrBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Password: string(hashedPassword),
		ImageURL: imageURL,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, conflictOr(err, "用户名已存在")
	}
	return newUser, nil
}

// 登录逻辑：1、检查库中是否有该用户名 2、加密后密码和输入密码比对 3、生成jwt签名
func (s *userService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: 用户名或密码错误", ErrUnauthorized)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: 用户名或密码错误", ErrUnauthorized)
	}
	return s.tokens.GenerateToken(user.ID, user.Username)
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	return user, nil
}

// 创作者主页只统计公开视频，本人查看时统计全部
func (s *userService) GetCreator(ctx context.Context, creatorID, viewerID uint64) (*CreatorProfile, error) {
	user, err := s.GetProfile(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	profile := &CreatorProfile{User: *user}

	subCounts, err := s.subRepo.SubscriberCounts(ctx, []uint64{creatorID})
	if err != nil {
		return nil, err
	}
	profile.SubscriberCount = subCounts[creatorID]

	if profile.VideoCount, err = s.videoRepo.CountByUser(ctx, creatorID, viewerID != creatorID); err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != creatorID {
		set, err := s.subRepo.SubscribedSet(ctx, viewerID, []uint64{creatorID})
		if err != nil {
			return nil, err
		}
		profile.ViewerSubscribed = set[creatorID]
	}
	return profile, nil
}
