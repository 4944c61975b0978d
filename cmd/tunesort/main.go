// Package main 是 tunesort 命令行工具
//
// 通过 Actor 系统读取音频文件标签，并按 "01 - Song Title.mp3" 的规则
// 重命名或复制到音乐库目录。
//
//	tunesort organize ~/Downloads/*.mp3 --root ~/Music
//	tunesort tag song.mp3 --title "Song Title" --track 1
//	tunesort watch ~/Downloads --metrics-addr :9090
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tunesort:", err)
		stop()
		os.Exit(1)
	}
}
