package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 连续的文件事件合并为一次运行
const DefaultDebounce = 200 * time.Millisecond

// Watch 先运行一次，之后在输入变化时重新运行，直到 ctx 取消
//
// 每次运行的结果交给 onRun；onRun 在 Watch 所在的 goroutine 中调用。
func (p *Processor) Watch(ctx context.Context, input string, debounce time.Duration, onRun func([]*Report, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := p.addWatch(watcher, input); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	p.logger.Info("watching", "path", input, "debounce_ms", debounce.Milliseconds())
	onRun(p.Process(ctx, input))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := p.addWatch(watcher, event.Name); err != nil {
						p.logger.Warn("watch new directory failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !p.relevant(event) {
				continue
			}

			p.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			p.logger.Error("watcher error", "error", err)

		case <-timer.C:
			onRun(p.Process(ctx, input))
		}
	}
}

// addWatch 文件监听其所在目录，目录递归监听，跳过隐藏目录
func (p *Processor) addWatch(watcher *fsnotify.Watcher, input string) error {
	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(input))
	}

	return filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != input && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// relevant Go 源码模式关注 .go 和 go.mod，否则关注树文件；忽略 chmod
func (p *Processor) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if p.goSource {
		return strings.HasSuffix(event.Name, ".go") || filepath.Base(event.Name) == "go.mod"
	}
	return isTreeFile(event.Name)
}
