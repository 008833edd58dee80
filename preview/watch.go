package preview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wohhie/cover-letter-tool/logging"
)

// DefaultDebounce 是连续写入合并为一次重绘的等待时间。
const DefaultDebounce = 150 * time.Millisecond

// Watch 监听 paths 指向的文件，变化稳定 delay 之后调用一次 onChange，
// 直到 ctx 结束。编辑器常用“写临时文件再改名”的方式保存，所以监听的是
// 父目录，再按文件名过滤。
func Watch(ctx context.Context, paths []string, delay time.Duration, onChange func(), logger *slog.Logger) error {
	if len(paths) == 0 {
		return fmt.Errorf("没有需要监听的文件")
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer w.Close()

	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("解析路径 %s 失败: %w", p, err)
		}
		targets[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("监听目录 %s 失败: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	d := &debouncer{delay: delay, fire: onChange}
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[name]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("文件变化", "path", name, "op", event.Op.String())
			d.trigger()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("文件监听出错", "error", err)
		}
	}
}

type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fire  func()

	// running 保证 fire 不会并发执行，即使一次重绘比 delay 更久。
	running sync.Mutex
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.run)
}

func (d *debouncer) run() {
	d.running.Lock()
	defer d.running.Unlock()
	d.fire()
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
