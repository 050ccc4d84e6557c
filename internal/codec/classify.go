package codec

import "strings"

// Coarse classification buckets for spreadsheet filtering. The bucket is
// derived from the free-text category on every export and never stored.
var buckets = []struct {
	name     string
	keywords []string
}{
	{"食", []string{"餐飲", "餐", "食", "飲料", "早餐", "午餐", "晚餐", "宵夜", "咖啡", "零食"}},
	{"衣", []string{"衣", "服飾", "鞋", "包"}},
	{"住", []string{"住", "房租", "房貸", "水電", "瓦斯", "電費", "水費", "網路", "家具"}},
	{"行", []string{"交通", "捷運", "公車", "火車", "高鐵", "計程車", "油", "停車"}},
	{"樂", []string{"娛樂", "電影", "遊戲", "旅遊", "旅行", "書"}},
}

const defaultBucket = "其他"

// Classify maps a category label to its bucket via substring match
// against the fixed keyword table; unknown categories land in 其他.
func Classify(category string) string {
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(category, kw) {
				return b.name
			}
		}
	}
	return defaultBucket
}
