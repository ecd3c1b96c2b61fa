package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/donutnomad/autofield/internal/config"
	"github.com/donutnomad/autofield/plugin"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	log      *zap.Logger
	ctx      context.Context // 用于响应退出信号

	// 生成完成后回调，测试使用
	onGenerated func(pkgDir string, stats *plugin.RunStats, err error)

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径
}

// runDev 启动开发模式
func runDev(cfg *config.Config, log *zap.Logger, args []string) {
	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}

	opts := &DevOptions{
		Patterns: defaultPatterns(args),
		Verbose:  cfg.Verbose,
		Output:   cfg.Output,
		Async:    cfg.Async,
		Debounce: *debounce,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dev(ctx, registry, log, opts); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// newDevRunner 创建 watcher 并添加监听目录
func newDevRunner(ctx context.Context, registry *plugin.Registry, log *zap.Logger, opts *DevOptions) (*devRunner, error) {
	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return nil, fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("没有找到需要监听的目录")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听器失败: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		log.Debug("监听目录", zap.String("dir", dir))
	}
	log.Info("开发模式已启动", zap.Int("dirs", len(dirs)), zap.Duration("debounce", opts.Debounce))

	return &devRunner{
		opts:     opts,
		registry: registry,
		watcher:  watcher,
		scanner: plugin.NewScanner(
			plugin.WithAnnotationFilter(registry.Annotations()...),
			plugin.WithScannerLogger(log),
		),
		log:         log,
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}, nil
}

// dev 启动开发模式，ctx 取消时退出
func dev(ctx context.Context, registry *plugin.Registry, log *zap.Logger, opts *DevOptions) error {
	runner, err := newDevRunner(ctx, registry, log, opts)
	if err != nil {
		return err
	}
	defer runner.close()

	fmt.Println("按 Ctrl+C 退出")
	return runner.watchLoop(ctx)
}

// close 停止所有待处理的定时器并关闭 watcher
func (r *devRunner) close() {
	r.mu.Lock()
	for _, timer := range r.pendingDirs {
		timer.Stop()
	}
	r.mu.Unlock()
	_ = r.watcher.Close()
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Info("正在退出...")
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("监听错误", zap.Error(err))
		}
	}
}

// handleEvent 处理文件事件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	// 只关注 Write 和 Create 事件
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	filePath := event.Name
	// 跳过非 Go 文件、测试文件和生成的文件
	if !plugin.IsSourceFile(filePath) {
		return
	}
	log := r.log.With(zap.String("file", filePath))
	log.Debug("检测到文件变化")

	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		log.Debug("检查注解失败", zap.Error(err))
		return
	}
	if !hasAnnotation {
		log.Debug("跳过文件（无注解）")
		return
	}

	if err := checkSyntax(filePath); err != nil {
		log.Warn("语法错误", zap.Error(err))
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists {
		timer.Stop()
	}

	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.runGenerate(pkgDir)

		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()
	})
}

// runGenerate 执行实际的代码生成，只生成变动的包
func (r *devRunner) runGenerate(pkgDir string) {
	r.log.Debug("触发代码生成", zap.String("dir", pkgDir))

	stats, err := plugin.RunWithOptions(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
		Logger:   r.log,
	})
	if r.onGenerated != nil {
		defer r.onGenerated(pkgDir, stats, err)
	}
	if err != nil {
		r.log.Error("生成失败", zap.String("dir", pkgDir), zap.Error(err))
		return
	}
	if stats.FileCount > 0 {
		r.log.Info("生成完成",
			zap.Int("files", stats.FileCount),
			zap.Duration("elapsed", stats.TotalDuration))
	}
}

// checkSyntax 检查文件语法
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	_, err = imports.Process(filePath, content, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true, // 只检查语法，不修改 imports
	})
	return err
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			// 单个文件监听其所在目录
			add(filepath.Dir(absDir))
			continue
		}
		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// 跳过隐藏目录、vendor 和 testdata
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
