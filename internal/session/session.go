// Package session 持有单用户编辑会话：当前文档、应用配置与配色方案注册表。
// 每次变更在副本上执行，成功后整体替换并交给防抖写入器持久化。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"smartCV/internal/persist"
	"smartCV/internal/profile"
	"smartCV/internal/resume"
	"smartCV/internal/suggest"
	"smartCV/internal/table"
)

var (
	// ErrBusy 表示同类异步请求仍在进行。
	ErrBusy = errors.New("session: a request of this kind is already in progress")
	// ErrNotFound 表示按 id 或下标找不到条目。
	ErrNotFound = errors.New("session: item not found")
	// ErrEditNotFound 表示表格编辑会话不存在或已结束。
	ErrEditNotFound = errors.New("session: table edit not found")
)

// Suggester 是 AI 协作方；实现自行处理失败并返回兜底值。
type Suggester interface {
	SuggestStyle(ctx context.Context, img suggest.Image) (suggest.Style, error)
	ImproveText(ctx context.Context, text string, kind suggest.TextKind) string
}

// Options 配置会话依赖；Writer 为 nil 时不持久化，Suggester 为 nil 时使用固定兜底。
type Options struct {
	Writer    *persist.Writer
	Suggester Suggester
	Profiles  *profile.Registry
	Logger    *slog.Logger
}

// Session 串行化所有变更。读取方法返回深拷贝。
type Session struct {
	mu       sync.Mutex
	doc      *resume.Document
	cfg      *resume.AppConfig
	profiles *profile.Registry
	edits    map[string]*tableEdit

	writer    *persist.Writer
	suggester Suggester
	logger    *slog.Logger

	busyMu sync.Mutex
	busy   map[string]bool
}

type tableEdit struct {
	editor  *table.Editor
	tableID string
}

// New 创建使用默认文档与配置的会话。
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Profiles == nil {
		opts.Profiles = profile.NewRegistry()
	}
	if opts.Suggester == nil {
		opts.Suggester = suggest.NewService(nil, opts.Logger)
	}
	return &Session{
		doc:       resume.DefaultDocument(),
		cfg:       resume.DefaultConfig(),
		profiles:  opts.Profiles,
		edits:     map[string]*tableEdit{},
		writer:    opts.Writer,
		suggester: opts.Suggester,
		logger:    opts.Logger,
		busy:      map[string]bool{},
	}
}

// Restore 从存储加载三条记录。缺失或损坏的记录保留默认值并记日志，
// 只有存储本身出错时才返回错误。
func (s *Session) Restore(ctx context.Context, store persist.Store) error {
	var errs []error
	load := func(key string) []byte {
		data, err := store.Load(ctx, key)
		if errors.Is(err, persist.ErrNotFound) {
			return nil
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", key, err))
			return nil
		}
		return data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if data := load(persist.KeyDocument); data != nil {
		if b, err := resume.Decode(data); err != nil {
			s.logger.Warn("stored document unreadable, using defaults", slog.Any("error", err))
		} else {
			doc := b.Document
			s.doc = &doc
		}
	}
	if data := load(persist.KeyConfig); data != nil {
		if cfg, err := resume.DecodeConfig(data); err != nil {
			s.logger.Warn("stored config unreadable, using defaults", slog.Any("error", err))
		} else {
			s.cfg = cfg
		}
	}
	if data := load(persist.KeyProfiles); data != nil {
		if n, err := s.profiles.Restore(data); err != nil {
			s.logger.Warn("stored profiles unreadable", slog.Any("error", err))
		} else {
			s.logger.Info("profiles restored", slog.Int("count", n))
		}
	}
	return errors.Join(errs...)
}

// Document 返回当前文档副本。
func (s *Session) Document() *resume.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Config 返回当前配置副本。
func (s *Session) Config() *resume.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Snapshot 在同一时刻取文档与配置，用于渲染。
func (s *Session) Snapshot() (*resume.Document, *resume.AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.cfg.Clone()
}

// Import 解析导入文件并整体替换文档；文件带 config 时一并替换配置。
// 解析或校验失败时状态不变。
func (s *Session) Import(data []byte) error {
	b, err := resume.Decode(data)
	if err != nil {
		return err
	}
	return s.mutate(func(doc *resume.Document, cfg *resume.AppConfig) error {
		*doc = b.Document
		if b.Config != nil {
			*cfg = *b.Config
		}
		return nil
	}, persist.KeyDocument, persist.KeyConfig)
}

// Export 生成 {...document, config}。
func (s *Session) Export() ([]byte, error) {
	doc, cfg := s.Snapshot()
	return resume.Encode(doc, cfg)
}

// Flush 立即写出待持久化的快照。
func (s *Session) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// mutate 在副本上执行 fn，成功后替换并持久化 keys 指向的记录。
func (s *Session) mutate(fn func(doc *resume.Document, cfg *resume.AppConfig) error, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	cfg := s.cfg.Clone()
	if err := fn(doc, cfg); err != nil {
		return err
	}
	s.doc, s.cfg = doc, cfg
	s.persistLocked(keys...)
	return nil
}

func (s *Session) mutateDocument(fn func(doc *resume.Document) error) error {
	return s.mutate(func(doc *resume.Document, _ *resume.AppConfig) error { return fn(doc) }, persist.KeyDocument)
}

func (s *Session) mutateConfig(fn func(cfg *resume.AppConfig) error) error {
	return s.mutate(func(_ *resume.Document, cfg *resume.AppConfig) error { return fn(cfg) }, persist.KeyConfig)
}

func (s *Session) persistLocked(keys ...string) {
	if s.writer == nil {
		return
	}
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case persist.KeyDocument:
			data, err = json.Marshal(s.doc)
		case persist.KeyConfig:
			data, err = json.Marshal(s.cfg)
		case persist.KeyProfiles:
			data, err = s.profiles.ExportUser()
		default:
			continue
		}
		if err != nil {
			s.logger.Error("encode snapshot failed", slog.String("key", key), slog.Any("error", err))
			continue
		}
		s.writer.Schedule(key, data)
	}
}

// acquire 占用一个加载标记，返回释放函数。
func (s *Session) acquire(kind string) (func(), error) {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if s.busy[kind] {
		return nil, fmt.Errorf("%s: %w", kind, ErrBusy)
	}
	s.busy[kind] = true
	return func() {
		s.busyMu.Lock()
		delete(s.busy, kind)
		s.busyMu.Unlock()
	}, nil
}

// Busy 报告某类请求是否在进行。
func (s *Session) Busy(kind string) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	return s.busy[kind]
}
