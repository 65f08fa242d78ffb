package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"smartCV/internal/api/middleware"
	"smartCV/internal/metrics"
	"smartCV/internal/resume"
	"smartCV/internal/session"
	"smartCV/internal/worker"
)

// AssetStore 保存用户上传的图片，*storage.Client 满足该接口。
type AssetStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GetBytes(ctx context.Context, objectKey string) ([]byte, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// TaskEnqueuer 投递异步任务，*asynq.Client 满足该接口。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Deps 汇总路由依赖。除 Session 外都可以为 nil，对应功能返回 503。
type Deps struct {
	Session *session.Session
	Printer worker.Printer
	Assets  AssetStore
	Tasks   TaskEnqueuer
	Redis   redis.UniversalClient
	Scanner Scanner
	Logger  *slog.Logger

	// MaxUploadBytes 限制 multipart 上传大小。
	MaxUploadBytes int64
	// SuggestPerMinute 是推荐接口的每分钟请求上限，依赖 Redis，0 表示不限。
	SuggestPerMinute int
}

// NewRouter 构建 Gin 路由引擎并注册全部端点。
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	registerValidators(deps.Logger)

	router := gin.New()
	router.MaxMultipartMemory = deps.MaxUploadBytes
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
		metrics.GinMiddleware(),
		gin.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	RegisterRoutes(router, deps)
	return router
}

// registerValidators 注册领域相关的 binding 标签。
func registerValidators(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	rules := map[string]validator.Func{
		"template": func(fl validator.FieldLevel) bool {
			return resume.TemplateID(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Error("register validator failed", slog.String("tag", tag), slog.Any("error", err))
		}
	}
}
