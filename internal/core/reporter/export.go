package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"portscanner/internal/core/model"
)

// SaveCsvResult 一次性将开放端口保存为 CSV
func SaveCsvResult(path string, data TabularData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	// 写入 UTF-8 BOM，防止 Excel 打开乱码
	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(data.Headers()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := w.WriteAll(data.Rows()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// SaveJsonResult 将完整汇总保存为 JSON
func SaveJsonResult(path string, summary *model.ScanSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write json file: %w", err)
	}
	return nil
}

// SaveYamlResult 将完整汇总保存为 YAML
func SaveYamlResult(path string, summary *model.ScanSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write yaml file: %w", err)
	}
	return nil
}
