package library

import "github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"

// ═══════════════════════════════════════════════════════════════════════════
// 日志
// ═══════════════════════════════════════════════════════════════════════════

// GenerateSimpleLogMessages 请求 LoggingActor 按级别输出文本
// Level 取值 DEBUG/INFO/WARNING/ERROR，大小写不敏感
type GenerateSimpleLogMessages struct {
	actor.Tracked
	Text  string
	Level string
}

// Kind 实现 actor.Message 接口
func (m *GenerateSimpleLogMessages) Kind() string { return "library.log.generate" }

// TerminateYourself 请求 LoggingActor 停止
type TerminateYourself struct {
	actor.Tracked
}

// Kind 实现 actor.Message 接口
func (m *TerminateYourself) Kind() string { return "library.log.terminate" }

// ═══════════════════════════════════════════════════════════════════════════
// 标签
// ═══════════════════════════════════════════════════════════════════════════

// CheckFileMetadata 读取文件标签
// 读取失败走运行时的通用失败路径
type CheckFileMetadata struct {
	actor.Tracked
	Path string
}

// Kind 实现 actor.Message 接口
func (m *CheckFileMetadata) Kind() string { return "library.tags.check" }

// FileMetadataChecked CheckFileMetadata 的成功回复
type FileMetadataChecked struct {
	actor.Tracked
	Path     string
	Metadata Metadata
}

// Kind 实现 actor.Message 接口
func (m *FileMetadataChecked) Kind() string { return "library.tags.checked" }

// WriteFileMetadata 写入文件标签
type WriteFileMetadata struct {
	actor.Tracked
	Path     string
	Metadata Metadata
}

// Kind 实现 actor.Message 接口
func (m *WriteFileMetadata) Kind() string { return "library.tags.write" }

// FileMetadataUpdated WriteFileMetadata 的成功回复
type FileMetadataUpdated struct {
	actor.Tracked
	Path     string
	Metadata Metadata
}

// Kind 实现 actor.Message 接口
func (m *FileMetadataUpdated) Kind() string { return "library.tags.updated" }

// WriteFileMetadataFailed WriteFileMetadata 的失败回复
type WriteFileMetadataFailed struct {
	actor.FailureMessage
}

// Kind 实现 actor.Message 接口
func (m *WriteFileMetadataFailed) Kind() string { return "library.tags.write_failed" }

// ═══════════════════════════════════════════════════════════════════════════
// 文件
// ═══════════════════════════════════════════════════════════════════════════

// RenameFileFromMetadata 按元数据在目标目录中重命名文件
type RenameFileFromMetadata struct {
	actor.Tracked
	Path     string
	Metadata Metadata
}

// Kind 实现 actor.Message 接口
func (m *RenameFileFromMetadata) Kind() string { return "library.files.rename" }

// FileSuccessfullyRenamed RenameFileFromMetadata 的成功回复
type FileSuccessfullyRenamed struct {
	actor.Tracked
	OldPath string
	NewPath string
}

// Kind 实现 actor.Message 接口
func (m *FileSuccessfullyRenamed) Kind() string { return "library.files.renamed" }

// RenameFileFromMetadataFailed RenameFileFromMetadata 的失败回复
type RenameFileFromMetadataFailed struct {
	actor.FailureMessage
}

// Kind 实现 actor.Message 接口
func (m *RenameFileFromMetadataFailed) Kind() string { return "library.files.rename_failed" }

// CopyFileFromMetadata 按元数据把文件复制到 TargetDir
// TargetDir 为空时使用 FileManagerActor.Root，再为空时使用源文件目录
type CopyFileFromMetadata struct {
	actor.Tracked
	Path      string
	Metadata  Metadata
	TargetDir string
}

// Kind 实现 actor.Message 接口
func (m *CopyFileFromMetadata) Kind() string { return "library.files.copy" }

// FileSuccessfullyCopied CopyFileFromMetadata 的成功回复
// Checksum 是副本内容的 BLAKE2b-256 十六进制摘要
type FileSuccessfullyCopied struct {
	actor.Tracked
	SourcePath string
	NewPath    string
	Checksum   string
}

// Kind 实现 actor.Message 接口
func (m *FileSuccessfullyCopied) Kind() string { return "library.files.copied" }

// CopyFileFromMetadataFailed CopyFileFromMetadata 的失败回复
type CopyFileFromMetadataFailed struct {
	actor.FailureMessage
}

// Kind 实现 actor.Message 接口
func (m *CopyFileFromMetadataFailed) Kind() string { return "library.files.copy_failed" }

// ═══════════════════════════════════════════════════════════════════════════
// 整理流程
// ═══════════════════════════════════════════════════════════════════════════

// OrganizeFile 读取标签并把文件移动（或复制）到规范的文件名
type OrganizeFile struct {
	actor.Tracked
	Path string
}

// Kind 实现 actor.Message 接口
func (m *OrganizeFile) Kind() string { return "library.organize" }

// FileOrganized OrganizeFile 的成功回复
type FileOrganized struct {
	actor.Tracked
	OldPath  string
	NewPath  string
	Metadata Metadata
}

// Kind 实现 actor.Message 接口
func (m *FileOrganized) Kind() string { return "library.organized" }

// OrganizeFileFailed OrganizeFile 的失败回复，Reason 来自下游的失败消息
type OrganizeFileFailed struct {
	actor.FailureMessage
}

// Kind 实现 actor.Message 接口
func (m *OrganizeFileFailed) Kind() string { return "library.organize_failed" }

// QueryOrganizerStatus 查询 OrganizerActor 的计数
type QueryOrganizerStatus struct {
	actor.Tracked
}

// Kind 实现 actor.Message 接口
func (m *QueryOrganizerStatus) Kind() string { return "library.organizer.query" }

// OrganizerStatus QueryOrganizerStatus 的回复
type OrganizerStatus struct {
	actor.Tracked
	Pending   int
	Organized int
	Failed    int
}

// Kind 实现 actor.Message 接口
func (m *OrganizerStatus) Kind() string { return "library.organizer.status" }
