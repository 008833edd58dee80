// Package plaintext exports the rendered letter verbatim, to a stream or to
// the system clipboard.
package plaintext

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// Write 原样输出信件文本，不做任何转换。
func Write(w io.Writer, doc string) error {
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("写入文本失败: %w", err)
	}
	return nil
}

// Render returns the document bytes unchanged.
func Render(doc string) []byte { return []byte(doc) }

// Clipboard 写系统剪贴板；失败时退回到终端的 OSC 52 序列。
type Clipboard struct {
	// Terminal 接收 OSC 52 序列，通常是 os.Stderr。为 nil 时不做回退。
	Terminal *os.File
	Logger   *slog.Logger

	write func(string) error
}

// NewClipboard creates a clipboard writer with the OSC 52 fallback on terminal.
func NewClipboard(terminal *os.File, logger *slog.Logger) *Clipboard {
	return &Clipboard{Terminal: terminal, Logger: logger, write: clipboard.WriteAll}
}

// Copy 写入剪贴板，返回内容是否送达某个剪贴板通道。
// 两条通道都失败时只记录 debug 日志，不向用户报告。
func (c *Clipboard) Copy(doc string) bool {
	write := c.write
	if write == nil {
		write = clipboard.WriteAll
	}
	err := write(doc)
	if err == nil {
		return true
	}
	c.debug("系统剪贴板不可用，尝试 OSC 52", "error", err)

	if c.Terminal == nil || !term.IsTerminal(int(c.Terminal.Fd())) {
		c.debug("没有可用终端，放弃复制")
		return false
	}
	if err := writeOSC52(c.Terminal, doc); err != nil {
		c.debug("OSC 52 写入失败", "error", err)
		return false
	}
	return true
}

func (c *Clipboard) debug(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}

// writeOSC52 发送终端剪贴板转义序列 ESC ] 52 ; c ; <base64> BEL。
func writeOSC52(w io.Writer, doc string) error {
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(doc)) + "\a"
	_, err := io.WriteString(w, seq)
	return err
}
