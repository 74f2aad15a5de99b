package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chronolog/internal/feedback"
	"github.com/chronolog/internal/history"
	"github.com/chronolog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseInt64Param(c *gin.Context, key string) (int64, error) {
	raw := c.Param(key)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// parseInt64Query 解析可选的整数查询参数，缺省时返回 0
func parseInt64Query(c *gin.Context, key string) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// respondServiceError 把领域错误映射为 HTTP 状态码，其余错误记录日志后返回 fallback
func (a *API) respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, history.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, history.ErrBlankActivity),
		errors.Is(err, history.ErrInvalidStartTime),
		errors.Is(err, history.ErrDuplicateStartTime),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrHabitActivityRequired),
		errors.Is(err, feedback.ErrEmptyText),
		errors.Is(err, feedback.ErrEmptyCategory):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
