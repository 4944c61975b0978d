// Package library 提供整理音乐文件的领域 Actor
//
// 所有请求消息都是可追踪的（嵌入 actor.Tracked），回复沿用请求的 tracking id，
// 失败回复嵌入 actor.FailureMessage。
//
// # 组件
//
//   - LoggingActor: 按级别把文本写入日志
//   - TagActor: 通过 TagStore 读写 ID3 标签
//   - FileManagerActor: 按元数据重命名或复制文件
//   - OrganizerActor: 串联 TagActor 和 FileManagerActor 的协调 Actor
//   - Watcher: 监听目录，把新文件交给 OrganizerActor
//
// # 错误约定
//
// 可预期的文件系统错误（*fs.PathError、*os.LinkError）由 Actor 自己捕获，
// 记录日志后回复显式的 *Failed 消息；其他错误交给运行时的通用失败路径，
// 以 *actor.ActorFailure 的形式回到发送者。
//
// # 使用示例
//
//	sys := actor.NewSystem("tunesort")
//	files, _ := sys.Spawn(&library.FileManagerActor{}, "files")
//
//	renamed, err := actor.Ask[*library.FileSuccessfullyRenamed](ctx, files,
//	    &library.RenameFileFromMetadata{
//	        Tracked:  actor.Track(actor.NewTrackingID()),
//	        Path:     "/music/track.mp3",
//	        Metadata: library.Metadata{Title: "Song Title", Track: 1},
//	    })
package library
