package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFRender = "pdf:render"
)

// PDFRenderPayload 携带导出时刻的文档快照（导出文件格式），worker 不再回查会话。
type PDFRenderPayload struct {
	Bundle        json.RawMessage `json:"bundle"`
	CorrelationID string          `json:"correlation_id"`
}

// NewPDFRenderTask 构造一个 PDF 导出任务。
func NewPDFRenderTask(bundle []byte, correlationID string) (*asynq.Task, error) {
	if !json.Valid(bundle) {
		return nil, fmt.Errorf("pdf render task: bundle is not valid JSON")
	}
	payload, err := json.Marshal(PDFRenderPayload{
		Bundle:        bundle,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFRender, payload, asynq.MaxRetry(3)), nil
}
