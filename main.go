package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/donutnomad/autofield/autofieldgen"
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/idgen"
	"github.com/donutnomad/autofield/internal/config"
	"github.com/donutnomad/autofield/internal/logger"
	"github.com/donutnomad/autofield/plugin"
	"github.com/donutnomad/autofield/report"
	"github.com/donutnomad/autofield/rule"
)

func init() {
	plugin.MustRegister(autofieldgen.NewAutoFieldGenerator())
}

var (
	verbose    = flag.Bool("v", false, "详细输出")
	help       = flag.Bool("h", false, "显示帮助信息")
	output     = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），默认 $FILE_autofield.go")
	async      = flag.Bool("async", false, "并行执行生成器")
	check      = flag.Bool("check", false, "只检查生成文件是否最新，不写入；有差异时退出码为 1")
	configPath = flag.String("config", "", "配置文件路径，默认读取 ./autofield.yaml")
	debounce   = flag.Duration("debounce", 5*time.Second, "dev: 文件变动后等待多久再生成")

	jsonOut    = flag.Bool("json", false, "explain: 以 JSON 输出")
	dump       = flag.Bool("dump", false, "explain: 输出完整的编译结果")
	simulate   = flag.Bool("simulate", false, "explain: 对空记录执行创建规则")
	actor      = flag.String("actor", "", "explain -simulate: 当前操作人")
	tenantID   = flag.String("tenant-id", "", "explain -simulate: 租户 ID")
	tenantName = flag.String("tenant-name", "", "explain -simulate: 租户名称")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	cmd := "gen"
	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "gen", "dev", "explain":
			cmd = args[0]
			// 子命令之后还可以继续写选项
			_ = flag.CommandLine.Parse(args[1:])
			args = flag.Args()
		}
	}

	if *help {
		usage()
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	code := 0
	switch cmd {
	case "dev":
		runDev(cfg, log, args)
	case "explain":
		code = runExplain(cfg, log, args)
	default:
		code = runGen(cfg, log, args)
	}
	_ = log.Sync()
	os.Exit(code)
}

// loadConfig 读取配置文件和环境变量，命令行显式给出的参数优先
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbose
		case "output":
			cfg.Output = *output
		case "async":
			cfg.Async = *async
		}
	})
	if cfg.Verbose && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func defaultPatterns(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

func runGen(cfg *config.Config, log *zap.Logger, args []string) int {
	patterns := defaultPatterns(args)

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		return 1
	}

	if cfg.Verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, index int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	stats, err := plugin.RunWithOptions(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  cfg.Verbose,
		Output:   cfg.Output,
		Async:    cfg.Async,
		Check:    *check,
		Logger:   log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	if *check {
		changed := stats.Changed()
		for _, path := range changed {
			fmt.Print(stats.Diffs[path])
		}
		if len(changed) > 0 {
			fmt.Fprintf(os.Stderr, "%d 个文件需要重新生成\n", len(changed))
			return 1
		}
		return 0
	}

	if stats.FileCount > 0 || cfg.Verbose {
		fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件\n", stats.TargetCount, stats.FileCount)
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
	return 0
}

// runExplain 编译带注解的结构体并打印规则表，不写任何文件
func runExplain(cfg *config.Config, log *zap.Logger, args []string) int {
	scanner := plugin.NewScanner(
		plugin.WithAnnotationFilter(feature.AnnotationName),
		plugin.WithScannerLogger(log),
	)
	result, err := scanner.Scan(context.Background(), defaultPatterns(args)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	var env rule.Env
	if *simulate {
		ids, err := idgen.New(cfg.IDGen.Kind, cfg.IDGen.Node)
		if err != nil {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			return 1
		}
		env = rule.Env{
			Now:        time.Now(),
			ActorID:    *actor,
			TenantID:   *tenantID,
			TenantName: *tenantName,
			IDs:        ids,
		}
	}

	var (
		entities []report.Entity
		compiled []*autofieldgen.Entity
		failed   int
	)
	for _, at := range result.ByAnnotation(feature.AnnotationName) {
		entity, err := autofieldgen.CompileTarget(at, nil)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			continue
		}
		compiled = append(compiled, entity)

		e := report.FromArtifacts(entity.Artifacts)
		e.Table = entity.Model.TableName
		e.Source = fmt.Sprintf("%s:%d", at.Target.FilePath, at.Target.Line)
		e.Skipped = entity.Model.Skipped
		if *simulate {
			e.Simulated = report.Simulate(entity.Artifacts, env)
		}
		entities = append(entities, e)
	}

	switch {
	case *dump:
		report.WriteDump(os.Stdout, compiled)
	case *jsonOut:
		err = report.WriteJSON(os.Stdout, entities)
	default:
		err = report.WriteText(os.Stdout, entities)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `autofield - 自动字段规则生成工具

用法:
  autofield [选项] [路径...]
  autofield [选项] gen [选项] [路径...]
  autofield dev [选项] [路径...]
  autofield explain [选项] [路径...]

命令:
  gen       生成注册代码（默认）
  dev       启动开发模式，监听文件变动自动生成
  explain   打印每个实体编译后的字段规则、查询扩展和软删除描述

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./models/...   递归扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `文件级配置:
  // go:autofield: -output `+"`$FILE_fields`"+`
  // go:autofield: plugin:autofield -output `+"`zz_autofield`"+`

配置文件 autofield.yaml（环境变量前缀 AUTOFIELD_）:
  output, async, verbose, log.level, log.format, idgen.kind, idgen.node

示例:
  autofield ./...                           生成注册代码
  autofield -check ./...                    检查生成文件是否最新
  autofield explain -json ./models/...      以 JSON 输出编译结果
  autofield explain -simulate -actor u1 .   模拟创建时写入的字段
  autofield dev ./...                       开发模式，监听文件变动
`)
}
