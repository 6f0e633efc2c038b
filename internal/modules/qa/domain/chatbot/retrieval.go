package chatbot

import "sort"

// RetrievalResult 单条召回结果。Distance 越小越相关，0.0 视为精确/关键词命中。
type RetrievalResult struct {
	Content      string  `json:"content"`
	MetadataJSON string  `json:"metadata"`
	Distance     float64 `json:"distance"`
}

// MergeHybrid 合并向量召回与关键词召回。
//
// 规则：
// 1. 以 content 为 key 去重，向量结果先入表并保留真实距离；
// 2. 仅被关键词命中的条目距离置 0.0（精确命中视为最相关，排在最前）；
// 3. 按距离升序稳定排序后截断到 topK。
//
// 稳定排序保证同距离条目的顺序只取决于入表顺序，两次调用结果一致。
func MergeHybrid(vectorHits, keywordHits []RetrievalResult, topK int) []RetrievalResult {
	if topK <= 0 {
		topK = 5
	}

	seen := make(map[string]struct{}, len(vectorHits)+len(keywordHits))
	merged := make([]RetrievalResult, 0, len(vectorHits)+len(keywordHits))

	for _, h := range vectorHits {
		if _, ok := seen[h.Content]; ok {
			continue
		}
		seen[h.Content] = struct{}{}
		merged = append(merged, h)
	}
	for _, h := range keywordHits {
		if _, ok := seen[h.Content]; ok {
			continue
		}
		seen[h.Content] = struct{}{}
		h.Distance = 0.0
		merged = append(merged, h)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})

	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}
