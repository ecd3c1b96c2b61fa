package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/gg"
	"go.uber.org/zap"

	"github.com/donutnomad/autofield/internal/utils"
)

// GeneratedHeader 生成文件的头部注释
const GeneratedHeader = "Code generated by autofield. DO NOT EDIT."

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	_, err := RunWithOptions(ctx, &RunOptions{
		Registry: registry,
		Patterns: patterns,
	})
	return err
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并行执行生成器
	Check    bool   // 只比较不写入，差异记录在 RunStats.Diffs
	Logger   *zap.Logger
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成（或检查）的文件数量

	// Diffs Check 模式下内容会变化的文件，key: 文件路径, value: unified diff
	Diffs map[string]string
}

// Changed 返回内容会变化的文件，按路径排序
func (s *RunStats) Changed() []string {
	paths := make([]string, 0, len(s.Diffs))
	for p := range s.Diffs {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// genResultItem 存储单个生成器的执行结果
type genResultItem struct {
	genName string
	result  *GenerateResult
	err     error
}

// RunWithOptions 带选项运行并返回统计信息
func RunWithOptions(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{Diffs: make(map[string]string)}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, errors.New("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerLogger(log),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)
	stats.TargetCount = len(result.All())

	if stats.TargetCount == 0 {
		log.Info("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	log.Debug("扫描完成",
		zap.Int("targets", stats.TargetCount),
		zap.Duration("elapsed", stats.ScanDuration))

	generateStart := time.Now()
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := make([]string, 0, len(dispatch))
	for genName := range dispatch {
		genNames = append(genNames, genName)
	}
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		return compareGenerators(genA, genB)
	})

	executeGenerator := func(genName string) genResultItem {
		gen, ok := registry.GetByName(genName)
		if !ok {
			return genResultItem{genName: genName}
		}
		targets := dispatch[genName]
		genLog := log.With(zap.String("generator", genName))

		start := time.Now()
		genResult, err := gen.Generate(&GenerateContext{
			Targets:       targets,
			FileConfigs:   result.FileConfigs,
			DefaultOutput: opts.Output,
			Verbose:       opts.Verbose,
			Logger:        genLog,
		})
		genLog.Debug("生成器执行完成",
			zap.Int("targets", len(targets)),
			zap.Duration("elapsed", time.Since(start)))
		return genResultItem{genName: genName, result: genResult, err: err}
	}

	items := make([]genResultItem, len(genNames))
	if opts.Async {
		var wg sync.WaitGroup
		for i, genName := range genNames {
			i, genName := i, genName
			wg.Add(1)
			go func() {
				defer wg.Done()
				items[i] = executeGenerator(genName)
			}()
		}
		wg.Wait()
	} else {
		for i, genName := range genNames {
			items[i] = executeGenerator(genName)
		}
	}

	// 按优先级顺序收集 gg 定义，按输出路径分组
	var allErrors []error
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for _, item := range items {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			continue
		}
		if item.result == nil {
			continue
		}
		for path, def := range item.result.Definitions {
			fileDefinitions[path] = append(fileDefinitions[path], def)
			fileGenNames[path] = append(fileGenNames[path], item.genName)
		}
		allErrors = append(allErrors, item.result.Errors...)
	}

	paths := make([]string, 0, len(fileDefinitions))
	for path := range fileDefinitions {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		if opts.Check {
			diff, err := checkGGFile(path, merged)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("检查文件 %s 失败: %w", path, err))
				continue
			}
			stats.FileCount++
			if diff != "" {
				stats.Diffs[path] = diff
			}
			continue
		}

		if err := writeGGFile(path, merged); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		stats.FileCount++
		log.Info("生成文件", zap.String("path", path))
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		for _, e := range allErrors {
			log.Error("生成错误", zap.Error(e))
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误: %w", len(allErrors), errors.Join(allErrors...))
	}
	return stats, nil
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, errors.New("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 直接使用 Merge，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()
		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 将 gg 定义格式化后写入文件
func writeGGFile(path string, gen *gg.Generator) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return utils.WriteFormat(path, gen.Bytes())
}

// checkGGFile 与磁盘上的文件比较，返回 unified diff，内容一致时返回空字符串
func checkGGFile(path string, gen *gg.Generator) (string, error) {
	formatted, err := utils.Format(path, gen.Bytes())
	if err != nil {
		return "", err
	}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if bytes.Equal(existing, formatted) {
		return "", nil
	}
	return utils.Diff(path, existing, formatted)
}

// GetOutputPath 计算输出路径
// 优先级：文件级插件配置 > 文件级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, defaultFileName string, fileConfig *FileConfig, pluginName string, cmdOutput string) string {
	output := fileConfig.GetPluginOutput(strings.ToLower(pluginName))
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		output = defaultFileName
	}
	if output == "" {
		output = "$FILE" + GeneratedSuffix
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}
