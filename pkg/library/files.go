package library

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// FileManagerActor 按元数据重命名或复制文件
// 可预期的文件系统错误回复 *Failed 消息，原因是操作系统的错误文本
type FileManagerActor struct {
	// Root 目标目录，为空时使用源文件所在目录
	Root string
	// Pattern 文件名模式，为空时使用 DefaultPattern
	Pattern string
}

// Receive 实现 actor.Actor 接口
func (a *FileManagerActor) Receive(ctx *actor.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case *actor.Started, *actor.Stopping:
		return nil
	case *RenameFileFromMetadata:
		return a.rename(ctx, m)
	case *CopyFileFromMetadata:
		return a.copy(ctx, m)
	default:
		ctx.NotifyMarooned(msg)
		return nil
	}
}

// target 计算目标路径，元数据不完整时返回错误
func (a *FileManagerActor) target(path, dir string, md Metadata) (string, error) {
	name, err := md.FileName(filepath.Ext(path), a.Pattern)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if dir == "" {
		dir = a.Root
	}
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, name), nil
}

func (a *FileManagerActor) rename(ctx *actor.Context, m *RenameFileFromMetadata) error {
	newPath, err := a.target(m.Path, "", m.Metadata)
	if err != nil {
		return err
	}

	if err := renameNoClobber(m.Path, newPath); err != nil {
		if !isFileSystemError(err) {
			return err
		}
		ctx.Logger().Error("rename failed", m.TrackingID(), "path", m.Path, "target", newPath, "error", err)
		return ctx.Reply(&RenameFileFromMetadataFailed{FailureMessage: actor.NewFailure(m, err.Error())})
	}

	ctx.Logger().Info("file renamed", m.TrackingID(), "from", m.Path, "to", newPath)
	return ctx.Reply(&FileSuccessfullyRenamed{Tracked: actor.TrackFrom(m), OldPath: m.Path, NewPath: newPath})
}

func (a *FileManagerActor) copy(ctx *actor.Context, m *CopyFileFromMetadata) error {
	newPath, err := a.target(m.Path, m.TargetDir, m.Metadata)
	if err != nil {
		return err
	}

	sum, err := copyWithChecksum(m.Path, newPath)
	if err != nil {
		if !isFileSystemError(err) {
			return err
		}
		ctx.Logger().Error("copy failed", m.TrackingID(), "path", m.Path, "target", newPath, "error", err)
		return ctx.Reply(&CopyFileFromMetadataFailed{FailureMessage: actor.NewFailure(m, err.Error())})
	}

	ctx.Logger().Info("file copied", m.TrackingID(), "from", m.Path, "to", newPath, "checksum", sum)
	return ctx.Reply(&FileSuccessfullyCopied{
		Tracked:    actor.TrackFrom(m),
		SourcePath: m.Path,
		NewPath:    newPath,
		Checksum:   sum,
	})
}

// renameNoClobber 重命名文件，目标已存在时返回 fs.ErrExist
// 源和目标相同时什么也不做
func renameNoClobber(from, to string) error {
	if filepath.Clean(from) == filepath.Clean(to) {
		_, err := os.Stat(from)
		return err
	}
	if _, err := os.Lstat(to); err == nil {
		return &os.LinkError{Op: "rename", Old: from, New: to, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(from, to)
}

// copyWithChecksum 复制文件并返回副本的 BLAKE2b-256 摘要
// 目标已存在时失败；复制中途出错会删除不完整的副本
func copyWithChecksum(from, to string) (sum string, err error) {
	src, err := os.Open(from)
	if err != nil {
		return "", err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", &fs.PathError{Op: "copy", Path: from, Err: errors.New("is a directory")}
	}

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(to)
		}
	}()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(io.MultiWriter(dst, h), src); err != nil {
		return "", err
	}
	if err = dst.Sync(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
