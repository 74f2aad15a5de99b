package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chronolog/internal/habit"
)

const maxSkipDays = 6

// GetHabit 返回单个活动的习惯指标，skip_days 可覆盖默认宽限天数
func (a *API) GetHabit(c *gin.Context) {
	var skipDays *int
	if raw := strings.TrimSpace(c.Query("skip_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxSkipDays {
			respondError(c, http.StatusBadRequest, "skip_days must be between 0 and 6")
			return
		}
		skipDays = &n
	}

	metrics, err := a.habits.Metrics(c.Param("activity"), skipDays)
	if err != nil {
		a.respondServiceError(c, err, "计算习惯指标失败")
		return
	}

	resp := gin.H{"metrics": metrics}
	if recovery, ok := habit.Recover(metrics, a.logs.Now()); ok {
		resp["recovery"] = recovery
	}
	c.JSON(http.StatusOK, resp)
}
