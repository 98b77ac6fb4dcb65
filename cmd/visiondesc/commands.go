package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/api"
	"github.com/BaSui01/visiondesc/config"
	"github.com/BaSui01/visiondesc/internal/metrics"
	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/batch"
)

// cliOptions 全局与子命令共享的命令行参数
type cliOptions struct {
	configPath   string
	envFile      string
	provider     string
	prompt       string
	maxTokens    int
	model        string
	systemPrompt string
	concurrency  int
	input        string
	failOnError  bool
}

// newRootCmd 构建命令树，out/errOut 便于测试时捕获输出
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "visiondesc",
		Short:         "Describe images with OpenAI, Azure OpenAI or Anthropic Claude.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "path to .env file (ignored when missing)")
	pf.StringVar(&opts.provider, "provider", "", "provider: openai, azure, claude (default from config)")
	pf.StringVar(&opts.prompt, "prompt", "", "prompt sent with each image")
	pf.IntVar(&opts.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	pf.StringVar(&opts.model, "model", "", "model override")
	pf.StringVar(&opts.systemPrompt, "system-prompt", "", "system prompt")

	root.AddCommand(
		describeCmd(opts),
		batchCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return root
}

// =============================================================================
// 📝 describe
// =============================================================================

func describeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <image>",
		Short: "Describe a single image (URL, data URL or local path)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())
			defer app.Logger.Sync()

			svc, err := app.Service(opts.provider)
			if err != nil {
				return err
			}

			description, err := svc.GetDescription(cmd.Context(), args[0], opts.describeOptions(app.Config))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), description)
			return nil
		},
	}
}

// =============================================================================
// 📦 batch
// =============================================================================

func batchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [image...]",
		Short: "Describe many images with bounded concurrency and print JSON results",
		RunE: func(cmd *cobra.Command, args []string) error {
			identifiers := slices.Clone(args)
			if opts.input != "" {
				fromFile, err := readIdentifiers(opts.input, cmd.InOrStdin())
				if err != nil {
					return err
				}
				identifiers = append(identifiers, fromFile...)
			}
			if len(identifiers) == 0 {
				return fmt.Errorf("no images given: pass identifiers as arguments or use --input")
			}

			app, err := opts.setup(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())
			defer app.Logger.Sync()

			svc, err := app.Service(opts.provider)
			if err != nil {
				return err
			}

			describeOpts := opts.describeOptions(app.Config)
			describeOpts.Concurrency = app.Config.Batch.Concurrency
			if cmd.Flags().Changed("concurrency") {
				describeOpts.Concurrency = opts.concurrency
			}

			results, err := svc.GetDescriptionBatch(cmd.Context(), identifiers, describeOpts)
			if err != nil {
				return err
			}

			summary := batch.Summarize(results)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(api.BatchDescribeResponse{
				Provider: svc.Provider().Name(),
				Results:  results,
				Summary:  summary,
			}); err != nil {
				return fmt.Errorf("write results: %w", err)
			}

			if opts.failOnError && summary.Failed > 0 {
				return &exitError{code: 2, msg: fmt.Sprintf("%d of %d images failed", summary.Failed, summary.Total)}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", batch.DefaultConcurrency, "maximum in-flight describe calls")
	cmd.Flags().StringVar(&opts.input, "input", "", "file with one identifier per line (\"-\" for stdin)")
	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, "exit non-zero when any image fails")
	return cmd
}

// readIdentifiers 逐行读取标识，忽略空行与 # 注释
func readIdentifiers(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ids, nil
}

// =============================================================================
// 🖥️ serve
// =============================================================================

func serveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd, true)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			app.Logger.Info("starting visiondesc",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit),
			)

			srv := NewServer(app)
			if err := srv.Start(); err != nil {
				_ = app.Close(context.Background())
				return fmt.Errorf("failed to start server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

// =============================================================================
// 📋 version
// =============================================================================

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "visiondesc %s\n", Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}

// =============================================================================
// 🔧 公共装配
// =============================================================================

// setup 加载配置、套用命令行覆盖、初始化日志并装配应用。
// 非 serve 命令的日志默认写到 stderr，保持 stdout 只有结果。
func (o *cliOptions) setup(cmd *cobra.Command, serve bool) (*App, error) {
	loader := config.NewLoader().
		WithConfigPath(o.configPath).
		WithEnvFile(o.envFile)
	if serve {
		loader = loader.WithValidator(requireTLSFiles)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if serve {
		// HTTP 调用方不能读取服务端文件
		cfg.Loader.DisableLocalFiles = true
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Describe.Provider = o.provider
	}
	if flags.Changed("concurrency") {
		cfg.Batch.Concurrency = o.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !serve && slices.Equal(cfg.Log.OutputPaths, []string{"stdout"}) {
		cfg.Log.OutputPaths = []string{"stderr"}
	}
	logger := initLogger(cfg.Log)

	var collector *metrics.Collector
	if serve {
		collector = metrics.NewCollector(cfg.Server.MetricsNamespace, logger)
	}

	app, err := newApp(cfg, logger, collector)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}

// requireTLSFiles 确认启用 TLS 时证书与私钥文件存在
func requireTLSFiles(cfg *config.Config) error {
	files := []struct{ key, path string }{
		{"server.tls_cert_file", cfg.Server.TLSCertFile},
		{"server.tls_key_file", cfg.Server.TLSKeyFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return nil
}

// describeOptions 合并配置默认值与命令行覆盖
func (o *cliOptions) describeOptions(cfg *config.Config) *llm.DescribeOptions {
	d := &llm.DescribeOptions{
		Prompt:       cfg.Describe.Prompt,
		MaxTokens:    cfg.Describe.MaxTokens,
		Model:        cfg.Describe.Model,
		SystemPrompt: cfg.Describe.SystemPrompt,
	}
	if o.prompt != "" {
		d.Prompt = o.prompt
	}
	if o.maxTokens > 0 {
		d.MaxTokens = o.maxTokens
	}
	if o.model != "" {
		d.Model = o.model
	}
	if o.systemPrompt != "" {
		d.SystemPrompt = o.systemPrompt
	}
	return d
}
