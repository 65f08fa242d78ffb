package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"smartCV/internal/resume"
)

// readBundle 读取并解析导出的简历文件，文件不带 config 时使用默认配置。
func readBundle(path string) (*resume.Document, *resume.AppConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	b, err := resume.Decode(data)
	if err != nil {
		return nil, nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	if b.Config == nil {
		return &b.Document, resume.DefaultConfig(), false, nil
	}
	return &b.Document, b.Config, true, nil
}

// writeOutput 写文件；path 为 "-" 时写到命令的标准输出。
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
