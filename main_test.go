package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donutnomad/autofield/autofieldgen"
	"github.com/donutnomad/autofield/plugin"
)

const orderSource = `package model

import "time"

// Order 订单
// @AutoField(timestamps)
type Order struct {
	ID         int64
	CreateTime time.Time
	UpdateTime time.Time
}
`

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b", ".git", "testdata", "_tmp", "vendor"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	file := filepath.Join(root, "a", "x.go")
	require.NoError(t, os.WriteFile(file, []byte("package a\n"), 0644))

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, dirs)

	dirs, err = collectWatchDirs([]string{root, file})
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "a")}, dirs)

	_, err = collectWatchDirs([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestCheckSyntax(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.go")
	bad := filepath.Join(dir, "bad.go")
	require.NoError(t, os.WriteFile(good, []byte(orderSource), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("package model\n\ntype Order struct {\n"), 0644))

	assert.NoError(t, checkSyntax(good))
	assert.Error(t, checkSyntax(bad))
	assert.Error(t, checkSyntax(filepath.Join(dir, "missing.go")))
}

func TestDefaultPatterns(t *testing.T) {
	assert.Equal(t, []string{"./..."}, defaultPatterns(nil))
	assert.Equal(t, []string{"./models"}, defaultPatterns([]string{"./models"}))
}

func TestDevRunnerGenerates(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "order.go")
	require.NoError(t, os.WriteFile(source, []byte(orderSource), 0644))

	registry := plugin.NewRegistry()
	registry.MustRegister(autofieldgen.NewAutoFieldGenerator())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := newDevRunner(ctx, registry, zap.NewNop(), &DevOptions{
		Patterns: []string{dir},
		Debounce: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer runner.close()

	done := make(chan error, 1)
	runner.onGenerated = func(pkgDir string, stats *plugin.RunStats, err error) {
		done <- err
	}

	// 生成文件和测试文件的变动不会触发生成
	runner.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "order_autofield.go"), Op: fsnotify.Write})
	runner.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "order_test.go"), Op: fsnotify.Write})
	runner.handleEvent(fsnotify.Event{Name: source, Op: fsnotify.Remove})
	runner.mu.Lock()
	assert.Empty(t, runner.pendingDirs)
	runner.mu.Unlock()

	runner.handleEvent(fsnotify.Event{Name: source, Op: fsnotify.Write})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("等待生成超时")
	}

	content, err := os.ReadFile(filepath.Join(dir, "order_autofield.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Code generated by autofield. DO NOT EDIT.")
	assert.Contains(t, string(content), "var OrderAutoField = compiler.MustRegisterModel(&Order{}, feature.Config{")
}
