// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

type seedItem struct {
	name, category, description string
	tags                        []string
}

var seedDishes = []seedItem{
	// 中餐
	{"红烧肉", "家常菜", "肥瘦相间，香甜软糯", []string{"甜", "荤菜"}},
	{"宫保鸡丁", "川菜", "酸甜微辣，鸡肉嫩滑", []string{"辣", "荤菜"}},
	{"麻婆豆腐", "川菜", "麻辣鲜香，嫩滑爽口", []string{"辣", "麻", "素菜"}},
	{"糖醋里脊", "家常菜", "酸甜可口，外酥内嫩", []string{"甜", "酸", "荤菜"}},
	{"回锅肉", "川菜", "肥而不腻，香辣下饭", []string{"辣", "荤菜"}},
	{"鱼香肉丝", "川菜", "酸甜微辣，下饭神器", []string{"酸", "甜", "辣"}},
	{"白切鸡", "粤菜", "清淡鲜美，原汁原味", []string{"清淡", "荤菜"}},
	{"蒸蛋羹", "家常菜", "嫩滑如丝，营养丰富", []string{"清淡", "嫩滑"}},
	{"西红柿鸡蛋", "家常菜", "酸甜开胃，简单美味", []string{"酸", "甜", "家常"}},
	{"青椒肉丝", "家常菜", "清香爽脆，营养均衡", []string{"清淡", "荤菜"}},

	// 面食
	{"兰州拉面", "面食", "汤清面白，香气扑鼻", []string{"清汤", "面条"}},
	{"重庆小面", "面食", "麻辣鲜香，重庆特色", []string{"辣", "麻", "面条"}},
	{"炸酱面", "面食", "酱香浓郁，老北京味道", []string{"咸香", "面条"}},
	{"担担面", "川菜", "麻辣鲜美，四川名面", []string{"辣", "麻", "面条"}},
	{"热干面", "面食", "武汉特色，芝麻香浓", []string{"香", "面条"}},

	// 快餐外卖
	{"麦当劳巨无霸", "快餐", "经典汉堡，双层牛肉", []string{"快餐", "汉堡"}},
	{"肯德基炸鸡", "快餐", "香脆多汁，秘制配方", []string{"快餐", "炸鸡"}},
	{"必胜客披萨", "快餐", "芝士拉丝，意式风味", []string{"快餐", "披萨"}},
	{"黄焖鸡米饭", "快餐", "鸡肉软烂，汤汁浓郁", []string{"快餐", "盖饭"}},
	{"沙县小吃", "快餐", "实惠美味，全国连锁", []string{"快餐", "小吃"}},
	{"煲仔饭", "快餐", "米饭香糯，配菜丰富", []string{"快餐", "米饭"}},
	{"盖浇饭", "快餐", "菜品丰富，经济实惠", []string{"快餐", "盖饭"}},

	// 地方特色
	{"北京烤鸭", "京菜", "皮脆肉嫩，京城名菜", []string{"烤制", "荤菜"}},
	{"东坡肉", "浙菜", "肥而不腻，入口即化", []string{"甜", "荤菜"}},
	{"水煮鱼", "川菜", "麻辣鲜香，鱼肉嫩滑", []string{"辣", "麻", "荤菜"}},
	{"小笼包", "江南小吃", "皮薄汁多，鲜美可口", []string{"鲜", "小吃"}},
	{"煎饼果子", "天津小吃", "香脆可口，街头美食", []string{"香脆", "小吃"}},
}

var seedDrinks = []seedItem{
	// 奶茶
	{"珍珠奶茶", "奶茶", "经典奶茶，Q弹珍珠", []string{"甜", "奶茶"}},
	{"芋泥波波茶", "奶茶", "香甜芋泥，Q弹波波", []string{"甜", "奶茶"}},
	{"红豆奶茶", "奶茶", "香甜红豆，浓郁奶香", []string{"甜", "奶茶"}},
	{"抹茶拿铁", "奶茶", "清香抹茶，丝滑奶泡", []string{"清香", "奶茶"}},
	{"焦糖玛奇朵", "奶茶", "焦糖香甜，层次丰富", []string{"甜", "奶茶"}},

	// 咖啡
	{"美式咖啡", "咖啡", "纯正咖啡，提神醒脑", []string{"苦", "咖啡"}},
	{"拿铁咖啡", "咖啡", "香浓奶泡，温润口感", []string{"香浓", "咖啡"}},
	{"卡布奇诺", "咖啡", "浓郁咖啡，绵密奶泡", []string{"浓郁", "咖啡"}},
	{"摩卡咖啡", "咖啡", "巧克力香，甜苦平衡", []string{"甜", "咖啡"}},

	// 果汁
	{"鲜榨橙汁", "果汁", "维C丰富，酸甜可口", []string{"酸", "甜", "果汁"}},
	{"苹果汁", "果汁", "清甜爽口，营养健康", []string{"甜", "果汁"}},
	{"西瓜汁", "果汁", "清热解暑，甘甜多汁", []string{"甜", "解暑"}},
	{"柠檬蜂蜜茶", "茶饮", "酸甜清香，润燥养颜", []string{"酸", "甜", "茶"}},

	// 汽水
	{"可口可乐", "汽水", "经典可乐，气泡爽快", []string{"甜", "汽水"}},
	{"雪碧", "汽水", "柠檬清香，透心凉爽", []string{"清爽", "汽水"}},
	{"橙味汽水", "汽水", "橙子香甜，气泡丰富", []string{"甜", "汽水"}},
}

// SeedCatalog fills an empty catalog with the built-in dishes and drinks.
// It returns the number of inserted items, which is zero when any food exists.
func (db *DB) SeedCatalog(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	n, err := db.CountFoods(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError("begin seed", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	base := db.timestamp()
	insert := func(kind models.FoodKind, items []seedItem) error {
		for _, it := range items {
			// Distinct timestamps keep the seed order stable under created_at sorting.
			ts := base.Add(time.Duration(inserted) * time.Microsecond)
			food := &models.FoodItem{
				ID:          NewID(),
				Name:        it.name,
				Kind:        kind,
				Category:    it.category,
				Description: it.description,
				Tags:        it.tags,
				Status:      models.StatusActive,
				CreatedAt:   ts,
				UpdatedAt:   ts,
			}
			if err := db.insertFood(ctx, tx, food); err != nil {
				return fmt.Errorf("seed %s: %w", it.name, err)
			}
			inserted++
		}
		return nil
	}
	if err := insert(models.KindDish, seedDishes); err != nil {
		return 0, storeError("seed dishes", err)
	}
	if err := insert(models.KindDrink, seedDrinks); err != nil {
		return 0, storeError("seed drinks", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError("commit seed", err)
	}

	logging.Info().
		Int("dishes", len(seedDishes)).
		Int("drinks", len(seedDrinks)).
		Msg("Seeded empty catalog")
	return inserted, nil
}
