// cmd/seeder/main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/repository"
	"Orion_Tube/pkg/config"
	"Orion_Tube/pkg/database"

	"github.com/go-faker/faker/v4"
	"golang.org/x/crypto/bcrypt"
)

var categoryNames = []string{
	"Comedy",
	"Gaming",
	"Music",
	"Anime",
	"Film",
	"Cars",
	"Travel and events",
	"News and politics",
	"Sports",
	"People and blogs",
	"Education",
	"Entertainment",
	"Science and technology",
}

func main() {
	onlyCategories := flag.Bool("categories-only", false, "只填充分类")
	reset := flag.Bool("reset", false, "先删除所有表再重建（会清空数据）")
	userCount := flag.Int("users", 100, "用户数量")
	videoCount := flag.Int("videos", 500, "视频数量")
	flag.Parse()

	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库 ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, nil)
	if err != nil {
		log.Fatalf("❌ 无法连接到数据库: %v", err)
	}
	fmt.Println("✅ 数据库连接成功!")

	// --- 2. 清理旧数据 (可选) ---
	if *reset {
		fmt.Println("🧹 正在清理旧数据...")
		// 注意：这将删除所有数据！
		tables := model.All()
		for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
			tables[i], tables[j] = tables[j], tables[i]
		}
		if err := db.Migrator().DropTable(tables...); err != nil {
			log.Fatalf("❌ 删除旧表失败: %v", err)
		}
		fmt.Println("✅ 旧表删除成功!")
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	ctx := context.Background()

	// --- 3. 创建分类 ---
	categories := make([]model.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		desc := "Videos related " + strings.ToLower(name)
		categories = append(categories, model.Category{Name: name, Description: &desc})
	}
	categoryRepo := repository.NewCategoryRepository(db)
	if err := categoryRepo.CreateIfNotExists(ctx, categories); err != nil {
		log.Fatalf("❌ 创建分类失败: %v", err)
	}
	fmt.Printf("✅ 成功创建 %d 个分类!\n", len(categories))
	if *onlyCategories {
		return
	}
	categories, err = categoryRepo.List(ctx)
	if err != nil {
		log.Fatalf("❌ 查询分类失败: %v", err)
	}

	// --- 4. 创建用户 ---
	fmt.Println("👥 正在创建用户...")
	// 为所有用户设置一个简单的默认密码 "password"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ 密码加密失败: %v", err)
	}
	userRepo := repository.NewUserRepository(db)
	userIDs := make([]uint64, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		user := model.User{
			// faker的用户名可能重复，加序号
			Username: fmt.Sprintf("%s_%d", faker.Username(), i),
			Password: string(hashedPassword),
			ImageURL: "https://api.dicebear.com/9.x/thumbs/svg?seed=" + faker.Word(),
		}
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Printf("⚠️ 创建用户失败: %v", err)
			continue
		}
		userIDs = append(userIDs, user.ID)
	}
	if len(userIDs) == 0 {
		log.Fatalf("❌ 没有可用的用户")
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", len(userIDs))

	// --- 5. 创建视频 ---
	fmt.Println("🎬 正在创建视频...")
	videoRepo := repository.NewVideoRepository(db, nil)
	videoIDs := make([]uint64, 0, *videoCount)
	for i := 0; i < *videoCount; i++ {
		category := categories[rand.Intn(len(categories))]
		desc := faker.Paragraph() // 生成一个随机的段落作为简介
		visibility := model.VisibilityPublic
		if rand.Intn(5) == 0 {
			visibility = model.VisibilityPrivate
		}
		status := "ready"
		video := model.Video{
			// 从已创建的用户中，随机选择一个作为作者
			UserID:      userIDs[rand.Intn(len(userIDs))],
			CategoryID:  &category.ID,
			Title:       faker.Sentence(), // 生成一个随机的句子作为标题
			Description: &desc,
			Visibility:  visibility,
			MuxStatus:   &status,
			Duration:    int64(rand.Intn(600_000) + 10_000),
		}
		if err := videoRepo.Create(ctx, &video); err != nil {
			log.Printf("⚠️ 创建视频失败: %v", err)
			continue
		}
		videoIDs = append(videoIDs, video.ID)
	}
	if len(videoIDs) == 0 {
		log.Fatalf("❌ 没有可用的视频")
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", len(videoIDs))

	// --- 6. 创建随机观看和反应 ---
	fmt.Println("👍 正在创建随机观看和反应...")
	viewRepo := repository.NewViewRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	interactions := len(videoIDs) * 4
	for i := 0; i < interactions; i++ {
		userID := userIDs[rand.Intn(len(userIDs))]
		videoID := videoIDs[rand.Intn(len(videoIDs))]
		// 重复的(user, video)只会刷新观看时间
		if _, err := viewRepo.Record(ctx, userID, videoID); err != nil {
			log.Printf("⚠️ 记录观看失败: %v", err)
			continue
		}
		if rand.Intn(3) != 0 {
			continue
		}
		reactionType := model.ReactionLike
		if rand.Intn(4) == 0 {
			reactionType = model.ReactionDislike
		}
		if err := reactionRepo.UpsertVideoReaction(ctx, &model.VideoReaction{
			UserID:  userID,
			VideoID: videoID,
			Type:    reactionType,
		}); err != nil {
			log.Printf("⚠️ 创建反应失败: %v", err)
		}
	}
	fmt.Printf("✅ 成功创建(或尝试创建) %d 次互动!\n", interactions)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}
