package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const defaultTimeout = 60 * time.Second

// Generator 使用 go-rod 在无头 Chromium 中把 HTML 打印成 A4 PDF。
// 每次调用启动独立的浏览器进程，调用方自行控制并发。
type Generator struct {
	// BrowserBin 为空时自动查找本机 Chromium。
	BrowserBin string
	// ReadySelector 出现后才开始打印。
	ReadySelector string
	Timeout       time.Duration
	Logger        *slog.Logger
}

// NewGenerator 创建 PDF 生成器。
func NewGenerator(bin, readyID string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{BrowserBin: bin, ReadySelector: "#" + readyID, Timeout: defaultTimeout, Logger: logger}
}

// Print 渲染 html 并返回 PDF 字节。
func (g *Generator) Print(ctx context.Context, html []byte) ([]byte, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if g.BrowserBin != "" {
		launch = launch.Bin(g.BrowserBin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Timeout(timeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(timeout)
	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	if g.ReadySelector != "" && g.ReadySelector != "#" {
		if _, err := page.Element(g.ReadySelector); err != nil {
			return nil, fmt.Errorf("wait render signal: %w", err)
		}
	}

	// 等待字体就绪，避免回退字体导致排版差异
	if _, err := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); err != nil {
		g.Logger.Warn("pdf: document.fonts.ready wait failed, continue", slog.Any("error", err))
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return nil, fmt.Errorf("set emulated media to print: %w", err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PaperWidth:        float64Ptr(8.27),
		PaperHeight:       float64Ptr(11.69),
		MarginTop:         float64Ptr(0),
		MarginBottom:      float64Ptr(0),
		MarginLeft:        float64Ptr(0),
		MarginRight:       float64Ptr(0),
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

func float64Ptr(v float64) *float64 {
	return &v
}
