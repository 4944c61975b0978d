package library

import (
	"fmt"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// organizeJob 一次整理请求的进度
type organizeJob struct {
	request   *OrganizeFile
	requester *actor.Ref
	metadata  Metadata
}

// OrganizerActor 协调 TagActor 和 FileManagerActor 完成一次整理
//
//	OrganizeFile → Tags: CheckFileMetadata → Files: Rename/CopyFileFromMetadata → 请求方
//
// 每个 tracking id 同时只能有一个请求在途；下游的任何失败都转换成
// OrganizeFileFailed 回给请求方，Reason 沿用下游的原因。
type OrganizerActor struct {
	Tags  *actor.Ref
	Files *actor.Ref
	// Copy 为 true 时复制而不是移动文件
	Copy bool
	// TargetDir 复制的目标目录，为空时由 FileManagerActor 决定
	TargetDir string

	pending   map[string]*organizeJob
	organized int
	failed    int
}

// NewOrganizerActor 创建 OrganizerActor
func NewOrganizerActor(tags, files *actor.Ref) *OrganizerActor {
	return &OrganizerActor{Tags: tags, Files: files}
}

// Receive 实现 actor.Actor 接口
func (a *OrganizerActor) Receive(ctx *actor.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case *actor.Started:
		a.pending = make(map[string]*organizeJob)
		return nil
	case *actor.Stopping:
		if len(a.pending) > 0 {
			ctx.Logger().Warn("organizer stopping with pending jobs", "", "pending", len(a.pending))
		}
		return nil
	case *OrganizeFile:
		return a.start(ctx, m)
	case *FileMetadataChecked:
		return a.tagsRead(ctx, m)
	case *FileSuccessfullyRenamed:
		return a.finish(ctx, m.TrackingID(), m.OldPath, m.NewPath)
	case *FileSuccessfullyCopied:
		return a.finish(ctx, m.TrackingID(), m.SourcePath, m.NewPath)
	case *QueryOrganizerStatus:
		return ctx.Reply(&OrganizerStatus{
			Tracked:   actor.TrackFrom(m),
			Pending:   len(a.pending),
			Organized: a.organized,
			Failed:    a.failed,
		})
	case actor.Failure:
		return a.fail(ctx, m.TrackingID(), m.Reason())
	default:
		ctx.NotifyMarooned(msg)
		return nil
	}
}

func (a *OrganizerActor) start(ctx *actor.Context, m *OrganizeFile) error {
	if m.TrackingID() == "" {
		return fmt.Errorf("organize %s: missing tracking id", m.Path)
	}
	if _, busy := a.pending[m.TrackingID()]; busy {
		return fmt.Errorf("organize %s: tracking id %s already in flight", m.Path, m.TrackingID())
	}

	a.pending[m.TrackingID()] = &organizeJob{request: m, requester: ctx.Sender()}
	ctx.Logger().Debug("organize started", m.TrackingID(), "path", m.Path)

	err := ctx.Tell(a.Tags, &CheckFileMetadata{Tracked: actor.TrackFrom(m), Path: m.Path})
	if err != nil {
		return a.fail(ctx, m.TrackingID(), err.Error())
	}
	return nil
}

func (a *OrganizerActor) tagsRead(ctx *actor.Context, m *FileMetadataChecked) error {
	job, ok := a.pending[m.TrackingID()]
	if !ok {
		ctx.Logger().Warn("reply for unknown job", m.TrackingID(), "kind", m.Kind())
		return nil
	}
	job.metadata = m.Metadata

	var next actor.Message
	if a.Copy {
		next = &CopyFileFromMetadata{
			Tracked:   actor.TrackFrom(m),
			Path:      m.Path,
			Metadata:  m.Metadata,
			TargetDir: a.TargetDir,
		}
	} else {
		next = &RenameFileFromMetadata{Tracked: actor.TrackFrom(m), Path: m.Path, Metadata: m.Metadata}
	}

	if err := ctx.Tell(a.Files, next); err != nil {
		return a.fail(ctx, m.TrackingID(), err.Error())
	}
	return nil
}

func (a *OrganizerActor) finish(ctx *actor.Context, trackingID, oldPath, newPath string) error {
	job, ok := a.pending[trackingID]
	if !ok {
		ctx.Logger().Warn("reply for unknown job", trackingID)
		return nil
	}
	delete(a.pending, trackingID)
	a.organized++

	ctx.Logger().Info("file organized", trackingID, "from", oldPath, "to", newPath)
	return a.respond(ctx, job, &FileOrganized{
		Tracked:  actor.Track(trackingID),
		OldPath:  oldPath,
		NewPath:  newPath,
		Metadata: job.metadata,
	})
}

func (a *OrganizerActor) fail(ctx *actor.Context, trackingID, reason string) error {
	job, ok := a.pending[trackingID]
	if !ok {
		ctx.Logger().Warn("failure for unknown job", trackingID, "reason", reason)
		return nil
	}
	delete(a.pending, trackingID)
	a.failed++

	ctx.Logger().Error("organize failed", trackingID, "path", job.request.Path, "reason", reason)
	return a.respond(ctx, job, &OrganizeFileFailed{FailureMessage: actor.NewFailure(job.request, reason)})
}

// respond 把最终结果发给请求方，没有请求方时只记录日志
func (a *OrganizerActor) respond(ctx *actor.Context, job *organizeJob, outcome actor.Message) error {
	if job.requester == nil {
		return nil
	}
	if err := job.requester.Tell(outcome, ctx.Myself()); err != nil {
		ctx.Logger().Warn("requester gone", actor.TrackingOf(outcome), "requester", job.requester.ID(), "error", err)
	}
	return nil
}
