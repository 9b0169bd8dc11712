package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/JocelynSullivan/VibeCycle/internal/api/auth"
	"github.com/JocelynSullivan/VibeCycle/internal/api/middleware"
	"github.com/JocelynSullivan/VibeCycle/internal/config"
	"github.com/JocelynSullivan/VibeCycle/internal/model"
	"github.com/JocelynSullivan/VibeCycle/internal/pkg/genai"
	"github.com/JocelynSullivan/VibeCycle/internal/pkg/metrics"
	"github.com/JocelynSullivan/VibeCycle/internal/pkg/ratelimit"
	"github.com/JocelynSullivan/VibeCycle/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、文本生成客户端以及 Gin 路由引擎。
// 各 store 以接口形式注入，测试时用 mock 替换。
type Server struct {
	logger    *slog.Logger
	db        *gorm.DB
	rdb       *redis.Client
	router    *gin.Engine
	auth      *auth.Handler
	users     UserStore
	tasks     TaskStore
	routines  RoutineStore
	generator Generator
	limiter   Limiter
}

// UserStore 是 API 层需要的用户存储能力。
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	DeleteByUsername(ctx context.Context, username string) error
	DeleteAllWithEmptyUsername(ctx context.Context) error
}

// TaskStore 是 API 层需要的任务存储能力。
type TaskStore interface {
	ListByOwner(ctx context.Context, owner string) ([]model.Task, error)
	GetByName(ctx context.Context, name string) (*model.Task, error)
	Upsert(ctx context.Context, task model.Task, owner string) (bool, error)
	DeleteByNameForOwner(ctx context.Context, name, owner string) error
}

// RoutineStore 是 API 层需要的例程快照存储能力。
type RoutineStore interface {
	Create(ctx context.Context, owner string, title *string, content string) (*model.SavedRoutine, error)
	ListByOwner(ctx context.Context, owner string) ([]model.SavedRoutine, error)
	GetByIDForOwner(ctx context.Context, id uint, owner string) (*model.SavedRoutine, error)
	Update(ctx context.Context, id uint, owner string, title, content *string) (*model.SavedRoutine, error)
	DeleteByIDForOwner(ctx context.Context, id uint, owner string) error
}

// Generator 是外部文本生成服务的抽象。
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Limiter 守在生成接口前的限流器。
type Limiter interface {
	Acquire(ctx context.Context) error
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 构造令牌服务、各 store、生成客户端
// 4. 初始化 Gin 路由引擎
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.SavedRoutine{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewService(
		cfg.Security.JWTSecret,
		cfg.Security.JWTAlgorithm,
		time.Duration(cfg.Security.TokenTTLMinutes)*time.Minute,
	)
	if err != nil {
		return nil, err
	}

	userStore := store.NewUserStore(db)
	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(internalErrorRecovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())

	s := &Server{
		logger:    logger,
		db:        db,
		rdb:       rdb,
		router:    r,
		auth:      auth.NewHandler(userStore, tokens, logger),
		users:     userStore,
		tasks:     store.NewTaskStore(db),
		routines:  store.NewRoutineStore(db),
		generator: genai.NewClient(&cfg.Ollama, logger),
		limiter:   ratelimit.New(rdb, logger, "", cfg.App.RateLimit, cfg.App.RateBurst),
	}
	s.registerRoutes(tokens, userStore)
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与 Redis 连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes(tokens *auth.Service, users middleware.UserFinder) {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/token", s.auth.Token)
	s.router.POST("/users", s.auth.Register)
	s.router.GET("/users", s.handleListUsers)
	// 静态段要先注册，避免被 :username 吞掉
	s.router.DELETE("/users/empty", s.handleDeleteEmptyUsers)
	s.router.DELETE("/users/:username", s.handleDeleteUser)

	authed := s.router.Group("/")
	authed.Use(middleware.AuthMiddleware(tokens, users))
	authed.GET("/users/me", s.handleMe)
	authed.GET("/tasks", s.handleListTasks)
	authed.GET("/tasks/:name", s.handleGetTask)
	authed.POST("/tasks", s.handleUpsertTask)
	authed.DELETE("/tasks/:name", s.handleDeleteTask)
	authed.POST("/routine", s.handleGenerateRoutine)
	authed.POST("/routines", s.handleSaveRoutine)
	authed.GET("/routines", s.handleListRoutines)
	authed.GET("/routines/:id", s.handleGetRoutine)
	authed.PUT("/routines/:id", s.handleUpdateRoutine)
	authed.DELETE("/routines/:id", s.handleDeleteRoutine)
}

// internalErrorRecovery 把未捕获的 panic 转成带诊断信息的 500 响应。
//
// 响应里带错误消息和调用栈，开发阶段方便前端直接看到失败原因。
// 对外部署前应当收紧。
func internalErrorRecovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if logger != nil {
			logger.Error("panic recovered",
				slog.String("path", c.Request.URL.Path),
				slog.Any("panic", recovered),
			)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"detail": "Internal server error",
			"error":  fmt.Sprint(recovered),
			"trace":  string(debug.Stack()),
		})
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListUsers 返回全部用户。
//
// GET /users
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.logger.Error("list users failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No users found"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// handleMe 返回当前已认证用户。
//
// GET /users/me
func (s *Server) handleMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleDeleteUser 删除指定用户。
//
// DELETE /users/:username
func (s *Server) handleDeleteUser(c *gin.Context) {
	username := c.Param("username")
	err := s.users.DeleteByUsername(c.Request.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User '%s' not found", username)})
		return
	}
	if err != nil {
		s.logger.Error("delete user failed", slog.String("username", username), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete user failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleDeleteEmptyUsers 清理用户名为空的脏数据。
// 无论有没有匹配行都返回成功。
//
// DELETE /users/empty
func (s *Server) handleDeleteEmptyUsers(c *gin.Context) {
	if err := s.users.DeleteAllWithEmptyUsername(c.Request.Context()); err != nil {
		s.logger.Error("delete empty users failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete empty users failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// currentUsername 取当前已认证用户的用户名。
// 只会在认证中间件之后的 handler 里调用。
func currentUsername(c *gin.Context) string {
	user := middleware.CurrentUser(c)
	if user == nil {
		return ""
	}
	return user.Username
}
