package server

import (
	"math/rand/v2"
)

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "威武的", "沉稳的", "活泼的",
		"机智的", "潇洒的", "淡定的", "闪亮的", "呆萌的",
	}

	fruits = []string{
		"苹果", "香蕉", "橙子", "葡萄", "草莓",
		"西瓜", "桃子", "芒果", "柠檬", "樱桃",
		"菠萝", "蓝莓", "荔枝", "椰子", "石榴",
	}
)

// GenerateNickname 生成随机昵称，连接时作为默认显示名
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + fruits[rand.IntN(len(fruits))]
}
