package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/engine"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

var (
	flagconf       string
	flagPDF        string
	flagDir        string
	flagOut        string
	flagNoAnalysis bool
	flagRegenerate string
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/trend_radar/configs/config.yaml", "config path, eg: -conf config.yaml")
	flag.StringVar(&flagPDF, "pdf", "", "单个 ITR 报告 PDF 路径")
	flag.StringVar(&flagDir, "dir", "", "批量处理目录下的所有 PDF")
	flag.StringVar(&flagOut, "out", "", "内容流 JSON 输出目录，覆盖配置")
	flag.BoolVar(&flagNoAnalysis, "no-analysis", false, "只抽取内容流，不生成分析")
	flag.StringVar(&flagRegenerate, "regenerate", "", "按 report_id 重新生成已入库报告的分析")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if flagOut != "" {
		cfg.Extraction.OutputDir = flagOut
	}
	if flagNoAnalysis {
		cfg.Extraction.GenerateAnalysis = false
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动趋势雷达...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 初始化存储；连接失败时只写本地 JSON
	store, err := storage.New(cfg.DB)
	if err != nil {
		logger.Log.Errorf("无法连接数据库: %v. 将仅生成 JSON 文件。", err)
		store = nil
	} else if store != nil {
		defer store.Close()
		logger.Log.Infof("已连接存储: %s", cfg.DB.Driver)
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 4. 初始化引擎
	eng, err := engine.NewEngine(ctx, cfg, store)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	switch {
	case flagRegenerate != "":
		doc, err := eng.Regenerate(ctx, flagRegenerate)
		if err != nil {
			logger.Log.Fatalf("重新生成分析失败 [%s]: %v", flagRegenerate, err)
		}
		logger.Log.Infof("✅ 分析已重新生成: %s (version %s)", doc.ReportID, doc.AnalysisMetadata.Version)

	case flagPDF != "":
		doc, err := eng.ProcessFile(ctx, flagPDF)
		if err != nil {
			logger.Log.Fatalf("处理 PDF 失败 [%s]: %v", flagPDF, err)
		}
		logger.Log.Infof("✅ 报告处理完毕: %s，%d 页，%d 个系列", doc.ReportID, doc.Metadata.TotalPages, len(doc.SeriesIndex))

	default:
		dir := flagDir
		if dir == "" {
			dir = cfg.Extraction.InputDir
		}
		if dir == "" {
			flag.Usage()
			os.Exit(2)
		}

		paths, err := engine.CollectPDFs(dir)
		if err != nil {
			logger.Log.Fatalf("无法读取目录 [%s]: %v", dir, err)
		}
		docs, err := eng.Run(ctx, engine.RunOptions{
			Paths: paths,
			ProgressCallback: func(status string, progress int) {
				logger.Log.Infof("[%3d%%] %s", progress, status)
			},
		})
		if err != nil {
			logger.Log.Fatalf("批量处理失败: %v", err)
		}
		logger.Log.Infof("✅ 批量处理完毕: %d/%d 份报告", len(docs), len(paths))
	}
}
