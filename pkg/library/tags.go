package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// ═══════════════════════════════════════════════════════════════════════════
// 标签存储
// ═══════════════════════════════════════════════════════════════════════════

// TagStore 标签读写接口
type TagStore interface {
	Read(path string) (Metadata, error)
	Write(path string, md Metadata) error
}

// ID3Store 基于 ID3v2 的标签存储
type ID3Store struct{}

const (
	trackFrameDescription = "Track number/Position in set"

	// id3HeaderSize ID3v2 标签头长度，更短的文件不可能带标签
	id3HeaderSize = 10
)

// Read 读取 ID3v2 标签，文件没有标签时返回空元数据
func (ID3Store) Read(path string) (Metadata, error) {
	short, err := shorterThanHeader(path)
	if err != nil {
		return Metadata{}, err
	}
	if short {
		return Metadata{}, nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}, err
	}
	defer tag.Close()

	md := Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
		Year:   strings.TrimSpace(tag.Year()),
	}

	if frame := tag.GetTextFrame(tag.CommonID(trackFrameDescription)); frame.Text != "" {
		md.Track = parseTrack(frame.Text)
	}
	return md, nil
}

// Write 写入 ID3v2 标签，空字段不会覆盖已有值
func (ID3Store) Write(path string, md Metadata) error {
	short, err := shorterThanHeader(path)
	if err != nil {
		return err
	}
	if short {
		tag := id3v2.NewEmptyTag()
		applyMetadata(tag, md)
		return prependTag(path, tag)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	applyMetadata(tag, md)
	return tag.Save()
}

func applyMetadata(tag *id3v2.Tag, md Metadata) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if md.Title != "" {
		tag.SetTitle(md.Title)
	}
	if md.Artist != "" {
		tag.SetArtist(md.Artist)
	}
	if md.Album != "" {
		tag.SetAlbum(md.Album)
	}
	if md.Year != "" {
		tag.SetYear(md.Year)
	}
	if md.Track > 0 {
		id := tag.CommonID(trackFrameDescription)
		tag.DeleteFrames(id)
		tag.AddTextFrame(id, tag.DefaultEncoding(), strconv.Itoa(md.Track))
	}
}

// shorterThanHeader 非空且短于标签头的文件，id3v2 解析时会报头长度错误
func shorterThanHeader(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Size() > 0 && info.Size() < id3HeaderSize, nil
}

// prependTag 把新标签写在原内容之前，经临时文件替换原文件
func prependTag(path string, tag *id3v2.Tag) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp := path + "-id3v2"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if _, err := tag.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// parseTrack 解析 "3" 或 "3/12" 形式的音轨号
func parseTrack(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ═══════════════════════════════════════════════════════════════════════════
// TagActor
// ═══════════════════════════════════════════════════════════════════════════

// TagActor 读写音频文件标签
type TagActor struct {
	Store TagStore
}

// NewTagActor 创建使用 ID3Store 的 TagActor
func NewTagActor() *TagActor {
	return &TagActor{Store: ID3Store{}}
}

// Receive 实现 actor.Actor 接口
func (a *TagActor) Receive(ctx *actor.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case *actor.Started, *actor.Stopping:
		return nil
	case *CheckFileMetadata:
		md, err := a.Store.Read(m.Path)
		if err != nil {
			return fmt.Errorf("read tags of %s: %w", m.Path, err)
		}
		ctx.Logger().Debug("tags read", m.TrackingID(), "path", m.Path, "metadata", md.String())
		return ctx.Reply(&FileMetadataChecked{Tracked: actor.TrackFrom(m), Path: m.Path, Metadata: md})
	case *WriteFileMetadata:
		return a.write(ctx, m)
	default:
		ctx.NotifyMarooned(msg)
		return nil
	}
}

func (a *TagActor) write(ctx *actor.Context, m *WriteFileMetadata) error {
	if err := a.Store.Write(m.Path, m.Metadata); err != nil {
		if !isFileSystemError(err) {
			return err
		}
		ctx.Logger().Error("tag write failed", m.TrackingID(), "path", m.Path, "error", err)
		return ctx.Reply(&WriteFileMetadataFailed{FailureMessage: actor.NewFailure(m, err.Error())})
	}

	ctx.Logger().Info("tags written", m.TrackingID(), "path", m.Path, "metadata", m.Metadata.String())
	return ctx.Reply(&FileMetadataUpdated{Tracked: actor.TrackFrom(m), Path: m.Path, Metadata: m.Metadata})
}

// isFileSystemError 判断是否为可预期的文件系统错误
func isFileSystemError(err error) bool {
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	var sysErr *os.SyscallError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &sysErr)
}
