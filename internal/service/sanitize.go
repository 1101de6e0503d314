package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// 正文允许常见排版标签
	ugcPolicy = bluemonday.UGCPolicy()
	// 标题、私信只留纯文本
	strictPolicy = bluemonday.StrictPolicy()
)

func sanitizeRich(s string) string { return strings.TrimSpace(ugcPolicy.Sanitize(s)) }

// sanitizePlain 去掉标签后还原实体，存的是纯文本而不是 HTML
func sanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
