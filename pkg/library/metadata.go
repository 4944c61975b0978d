package library

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultPattern 默认文件名模式，依次接收音轨号和标题
const DefaultPattern = "%02d - %s"

// ErrIncompleteMetadata 元数据不足以生成文件名
var ErrIncompleteMetadata = errors.New("incomplete metadata")

// Metadata 音轨元数据
type Metadata struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Album  string `json:"album,omitempty" yaml:"album,omitempty"`
	Track  int    `json:"track" yaml:"track"`
	Year   string `json:"year,omitempty" yaml:"year,omitempty"`
}

// FileName 按模式生成文件名
// pattern 为空时使用 DefaultPattern；ext 可以带或不带前导点。
//
//	Metadata{Title: "Song Title", Track: 1}.FileName(".mp3", "") // "01 - Song Title.mp3"
func (m Metadata) FileName(ext, pattern string) (string, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return "", fmt.Errorf("%w: missing title", ErrIncompleteMetadata)
	}
	if m.Track < 1 {
		return "", fmt.Errorf("%w: invalid track number %d", ErrIncompleteMetadata, m.Track)
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	base := sanitize(fmt.Sprintf(pattern, m.Track, title))

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return base + sanitize(ext), nil
}

// String 返回便于日志阅读的表示
func (m Metadata) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d %q", m.Track, m.Title)
	if m.Artist != "" {
		fmt.Fprintf(&b, " by %q", m.Artist)
	}
	if m.Album != "" {
		fmt.Fprintf(&b, " on %q", m.Album)
	}
	return b.String()
}

// sanitize 替换文件名中的非法字符
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
