package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JocelynSullivan/VibeCycle/internal/model"
	"github.com/JocelynSullivan/VibeCycle/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserStore 是 Handler 需要的凭据存储能力。
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, username, hashedPassword string) error
}

// Handler 提供注册与登录接口。
type Handler struct {
	users  UserStore
	tokens *Service
	logger *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(users UserStore, tokens *Service, logger *slog.Logger) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// loginRequest 是 OAuth2 password 风格的表单。
type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token 校验用户名密码并签发 Bearer 令牌。
//
// POST /token
func (h *Handler) Token(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 用户不存在和密码不对返回同一句话，不泄露用户是否存在
	const invalidCreds = "Incorrect username or password"

	user, err := h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Error("query user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCreds})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCreds})
		return
	}

	token, err := h.tokens.Issue(user.Username, h.tokens.TTL())
	if err != nil {
		h.logger.Error("sign token failed", slog.String("username", user.Username), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}

	h.logger.Info("user logged in", slog.String("username", user.Username))
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register 创建新用户。密码在进存储层之前就完成哈希，明文不落库不进日志。
//
// POST /users
func (h *Handler) Register(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	if err := h.users.Create(c.Request.Context(), req.Username, string(hash)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		h.logger.Error("create user failed", slog.String("username", req.Username), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	h.logger.Info("user registered", slog.String("username", req.Username))
	c.JSON(http.StatusCreated, gin.H{"message": "user created"})
}
