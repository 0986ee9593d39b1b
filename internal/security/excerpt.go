package security

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Excerpt はHTMLコンテンツからプレーンテキストの抜粋を生成する。
// イベントカードの説明文プレビューに使用する。
// タグをすべて取り除き、連続する空白を1つにまとめ、
// maxRunesを超える場合は単語境界で切り詰めて「...」を付ける。
// パースに失敗した場合はタグを含む生テキストを返さず、空文字列を返す。
func Excerpt(rawHTML string, maxRunes int) string {
	if rawHTML == "" || maxRunes <= 0 {
		return ""
	}

	node, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	collectText(node, &b)

	text := collapseWhitespace(b.String())
	return truncateAtWord(text, maxRunes)
}

// collectText はDOMツリーを走査してテキストノードを収集する。
// script/styleタグの中身は表示テキストではないため読み飛ばす。
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// collapseWhitespace は連続する空白文字を1つのスペースにまとめる。
func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// truncateAtWord はテキストをmaxRunes以内に切り詰める。
// 可能であれば単語境界で切り、末尾に「...」を付ける。
func truncateAtWord(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	cut := string(runes[:maxRunes])
	if idx := strings.LastIndex(cut, " "); idx > maxRunes/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
