// Package cmd provides the cover-letter command-line interface.
//
// Configuration is read, highest priority first, from command-line flags,
// COVERLETTER_* environment variables (COVERLETTER_PAGE_MARGIN,
// COVERLETTER_RENDER_BACKEND, ...) and .coverletter.yaml in the current
// directory or the user config directory.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wohhie/cover-letter-tool/app"
	"github.com/wohhie/cover-letter-tool/config"
	"github.com/wohhie/cover-letter-tool/fonts"
	"github.com/wohhie/cover-letter-tool/logging"
	"github.com/wohhie/cover-letter-tool/renderer"
	canvasrenderer "github.com/wohhie/cover-letter-tool/renderer/canvas"
	fpdfrenderer "github.com/wohhie/cover-letter-tool/renderer/fpdf"
	"github.com/wohhie/cover-letter-tool/state"
)

// rootOptions 保存全局 flag 与本次运行的 viper 实例。
type rootOptions struct {
	v          *viper.Viper
	cfgFile    string
	valuesFile string
	noPersist  bool
	debugPath  string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd 构建完整的命令树。每次调用都使用独立的配置实例。
func NewRootCmd() *cobra.Command {
	o := &rootOptions{v: config.New()}

	root := &cobra.Command{
		Use:   "cover-letter",
		Short: "Fill a cover-letter template and export it as text, PDF or DOCX",
		Long: `cover-letter keeps your letter fields between runs, fills them into a
template and exports the result.

Quick Start:
  cover-letter fill                 Answer the form interactively
  cover-letter preview              Preview the letter in the terminal
  cover-letter export pdf           Write CoverLetter_<Company>_<Position>.pdf
  cover-letter copy                 Copy the plain text to the clipboard`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(o.v, o.cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default is .coverletter.yaml)")
	pf.StringVar(&o.valuesFile, "values", "", "YAML/JSON file with field values for this run only")
	pf.BoolVar(&o.noPersist, "no-persist", false, "do not read or write the saved state")
	pf.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("state", "", "state database path")
	pf.String("backend", "", "PDF backend (canvas, core)")
	pf.String("output-dir", "", "directory for exported files")
	_ = o.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = o.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = o.v.BindPFlag("state.path", pf.Lookup("state"))
	_ = o.v.BindPFlag("render.backend", pf.Lookup("backend"))
	_ = o.v.BindPFlag("output.dir", pf.Lookup("output-dir"))

	root.AddCommand(
		newExportCmd(o),
		newCopyCmd(o),
		newPreviewCmd(o),
		newFillCmd(o),
		newSetCmd(o),
		newStateCmd(o),
		newTemplateCmd(o),
	)
	return root
}

// session 是一次命令执行所需的全部组件。
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  state.Store
	fixed  renderer.FixedLayout
	app    *app.App
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Debug("关闭状态存储失败", "error", err)
		}
	}
}

// open 读取配置并创建 App。--values 指定的字段只作用于本次运行，不写回状态库。
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	fixed, err := newFixedLayout(cfg)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	store, err := o.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, store: store, fixed: fixed}
	s.app = app.New(ctx, store, app.Options{
		Geometry:         cfg.Geometry,
		JustifyThreshold: cfg.Render.JustifyThreshold,
		Fixed:            fixed,
		DocxFont:         cfg.Render.DocxFont,
		DebugPath:        o.debugPath,
		Logger:           logger,
		Notify:           func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) },
	})

	if o.valuesFile != "" {
		values, err := loadValues(o.valuesFile)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := s.app.SetFields(ctx, values); err != nil {
			s.Close()
			return nil, fmt.Errorf("应用 %s 失败: %w", o.valuesFile, err)
		}
	}
	return s, nil
}

// openForWrite 用于会修改已保存状态的子命令。--values 让会话跑在内存副本上，
// 修改不会落盘，所以直接拒绝。
func (o *rootOptions) openForWrite(cmd *cobra.Command) (*session, error) {
	if o.valuesFile != "" {
		return nil, fmt.Errorf("--values 只作用于本次运行，不能与 %q 一起使用", cmd.CommandPath())
	}
	return o.open(cmd)
}

// openStore 打开状态库；--values 或 --no-persist 时改用内存存储，
// 前者先把已保存的记录复制进来。
func (o *rootOptions) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	if o.noPersist {
		return state.NewMemoryStore(), nil
	}
	db, err := state.OpenSQLite(cfg.State.Path)
	if err != nil {
		return nil, err
	}
	if o.valuesFile == "" {
		return db, nil
	}
	defer db.Close()

	mem := state.NewMemoryStore()
	data, err := db.Get(ctx, state.Key)
	switch {
	case err == nil:
		_ = mem.Put(ctx, state.Key, data)
	case !errors.Is(err, state.ErrNotFound):
		logger.Debug("读取已保存状态失败", "error", err)
	}
	return mem, nil
}

// newFixedLayout 按配置选择 PDF 后端。font.face 可以是内置字体名或 TTF/OTF 文件路径。
func newFixedLayout(cfg *config.Config) (renderer.FixedLayout, error) {
	if cfg.Render.Backend == config.BackendCore {
		return fpdfrenderer.NewRenderer(), nil
	}
	face := cfg.Font.Face
	switch strings.ToLower(filepath.Ext(face)) {
	case ".ttf", ".otf":
		if _, err := os.Stat(face); err != nil {
			return nil, fmt.Errorf("字体文件不可用: %w", err)
		}
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Font: canvasrenderer.Resource{Path: face},
		}), nil
	}
	if _, err := fonts.Load(face); err != nil {
		return nil, err
	}
	return canvasrenderer.NewRenderer(face), nil
}
