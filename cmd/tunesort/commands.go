package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/config"
	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/library"
)

const requestTimeout = 30 * time.Second

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "tunesort",
		Usage: "rename and file audio tracks by their tags",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address"},
		},
		Commands: []*cli.Command{
			organizeCommand(),
			tagCommand(),
			inspectCommand(),
			watchCommand(),
			configCommand(),
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// organize
// ═══════════════════════════════════════════════════════════════════════════

func organizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "organize",
		Usage:     "rename (or copy) files to \"NN - Title.ext\" using their tags",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "target directory, default: next to the source"},
			&cli.StringFlag{Name: "pattern", Usage: "file name pattern taking track and title"},
			&cli.BoolFlag{Name: "copy", Usage: "copy instead of move"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errors.New("organize: no files given")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return a.run(ctx, func(ctx context.Context) error {
				return organize(ctx, a, cmd.Args().Slice())
			})
		},
	}
}

// organize 为每个文件发起一次整理，等待全部结果
func organize(ctx context.Context, a *app, paths []string) error {
	inbox := a.sys.NewInbox("cli")
	defer inbox.Close()

	for _, p := range paths {
		msg := &library.OrganizeFile{Tracked: actor.Track(actor.NewTrackingID()), Path: p}
		if err := a.organizer.Tell(msg, inbox.Ref()); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var failed []error
	for range paths {
		reply, err := inbox.Receive(ctx)
		if err != nil {
			return err
		}
		switch m := reply.(type) {
		case *library.FileOrganized:
			fmt.Printf("ok    %s -> %s\n", m.OldPath, m.NewPath)
		case actor.Failure:
			failed = append(failed, fmt.Errorf("%s: %s", sourcePath(m), m.Reason()))
			fmt.Printf("FAIL  %s: %s\n", sourcePath(m), m.Reason())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(failed), len(paths), errors.Join(failed...))
	}
	return nil
}

func sourcePath(f actor.Failure) string {
	if req, ok := f.Source().(*library.OrganizeFile); ok {
		return req.Path
	}
	return f.TrackingID()
}

// ═══════════════════════════════════════════════════════════════════════════
// tag
// ═══════════════════════════════════════════════════════════════════════════

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "write ID3 tags",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title"},
			&cli.StringFlag{Name: "artist"},
			&cli.StringFlag{Name: "album"},
			&cli.StringFlag{Name: "year"},
			&cli.IntFlag{Name: "track"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("tag: exactly one file expected")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()

			updated, err := actor.Ask[*library.FileMetadataUpdated](ctx, a.tags, &library.WriteFileMetadata{
				Tracked: actor.Track(actor.NewTrackingID()),
				Path:    cmd.Args().First(),
				Metadata: library.Metadata{
					Title:  cmd.String("title"),
					Artist: cmd.String("artist"),
					Album:  cmd.String("album"),
					Year:   cmd.String("year"),
					Track:  int(cmd.Int("track")),
				},
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", updated.Path, updated.Metadata)
			return nil
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// inspect
// ═══════════════════════════════════════════════════════════════════════════

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print tags and the file name they produce",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pattern", Usage: "file name pattern taking track and title"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errors.New("inspect: no files given")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return inspect(ctx, a, cmd.Args().Slice())
		},
	}
}

// inspect 并发读取标签，按参数顺序输出
func inspect(ctx context.Context, a *app, paths []string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	results := make([]*library.FileMetadataChecked, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		g.Go(func() error {
			checked, err := actor.Ask[*library.FileMetadataChecked](ctx, a.tags,
				&library.CheckFileMetadata{Tracked: actor.Track(actor.NewTrackingID()), Path: p})
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			results[i] = checked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		name, err := r.Metadata.FileName(filepath.Ext(r.Path), a.cfg.Library.Pattern)
		if err != nil {
			name = "(" + err.Error() + ")"
		}
		fmt.Printf("%s\n  %s\n  -> %s\n", r.Path, r.Metadata, name)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// watch
// ═══════════════════════════════════════════════════════════════════════════

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "organize audio files as they appear in a directory",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "target directory, default: the watched directory"},
			&cli.StringFlag{Name: "pattern", Usage: "file name pattern taking track and title"},
			&cli.BoolFlag{Name: "copy", Usage: "copy instead of move"},
			&cli.DurationFlag{Name: "debounce", Usage: "quiet period before a file is picked up"},
			&cli.StringFlag{Name: "extensions", Usage: "comma separated extensions to pick up, e.g. .mp3,.flac"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("watch: exactly one directory expected")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			w, err := library.NewWatcher(a.sys, a.organizer, library.WatcherOptions{
				Dir:        cmd.Args().First(),
				Extensions: a.cfg.Library.Extensions,
				Debounce:   a.cfg.Watch.Debounce.Std(),
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}

			err = a.run(ctx, w.Run)
			if errors.Is(err, context.Canceled) {
				err = nil
			}

			qctx, qcancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer qcancel()
			st, qerr := actor.Ask[*library.OrganizerStatus](qctx, a.organizer, &library.QueryOrganizerStatus{})
			if qerr == nil {
				a.logger.Info("watch finished", "organized", st.Organized, "failed", st.Failed, "pending", st.Pending)
			}
			return err
		},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// config
// ═══════════════════════════════════════════════════════════════════════════

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printConfig(cfg)
		},
	}
}

func printConfig(cfg *config.Config) error {
	out, err := cfg.Dump()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
