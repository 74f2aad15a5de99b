package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/chronolog/internal/suggest"
)

const (
	dateFormat             = "2006-01-02"
	dismissedPredictionKey = "dismissed_prediction"
)

type dismissPayload struct {
	Activity string `json:"activity"`
}

// Suggestions 返回推荐活动及当前活动
func (a *API) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, a.analytics.Suggestions())
}

// Prediction 返回当前最可能的活动，没有把握或已被忽略时为 null
func (a *API) Prediction(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prediction": a.visiblePrediction(c, a.analytics.Prediction())})
}

// DismissPrediction 在本次会话内隐藏指定活动的预测
func (a *API) DismissPrediction(c *gin.Context) {
	var payload dismissPayload
	if !bindJSON(c, &payload, "请求参数格式错误") {
		return
	}
	activity := strings.TrimSpace(payload.Activity)
	if activity == "" {
		respondError(c, http.StatusBadRequest, "activity is required")
		return
	}

	session := sessions.Default(c)
	session.Set(dismissedPredictionKey, activity)
	if err := session.Save(); err != nil {
		a.respondServiceError(c, err, "保存会话失败")
		return
	}
	c.Status(http.StatusNoContent)
}

// Insights 返回洞察列表，date 指定参考日期（当天结束时刻，不晚于现在）
func (a *API) Insights(c *gin.Context) {
	ref, ok := a.referenceTime(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reference": ref.Unix(),
		"insights":  a.analytics.Insights(ref),
	})
}

// Daily 返回某一天的效率、平衡评分与精力状态，date 缺省为今天
func (a *API) Daily(c *gin.Context) {
	ref, ok := a.referenceTime(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.analytics.Daily(ref))
}

// Balance 返回最近 7 天的生活平衡
func (a *API) Balance(c *gin.Context) {
	c.JSON(http.StatusOK, a.analytics.Balance())
}

// Achievements 返回全部里程碑
func (a *API) Achievements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": a.analytics.Achievements()})
}

// referenceTime 解析 date 参数为当天结束时刻，不晚于现在；解析失败时已写入 400
func (a *API) referenceTime(c *gin.Context) (time.Time, bool) {
	now := a.logs.Now()
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return now, true
	}
	day, err := time.ParseInLocation(dateFormat, raw, now.Location())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date")
		return time.Time{}, false
	}
	if end := day.AddDate(0, 0, 1).Add(-time.Second); end.Before(now) {
		return end, true
	}
	return now, true
}

// Dashboard 返回汇总分析
func (a *API) Dashboard(c *gin.Context) {
	d, err := a.analytics.Dashboard(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, "生成仪表盘失败")
		return
	}
	d.Prediction = a.visiblePrediction(c, d.Prediction)
	c.JSON(http.StatusOK, d)
}

// WeeklyReport 默认返回 HTML，format=markdown 或 format=json 时返回对应格式
func (a *API) WeeklyReport(c *gin.Context) {
	report, err := a.analytics.WeeklyReport(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err, "生成周报失败")
		return
	}

	switch c.DefaultQuery("format", "html") {
	case "json":
		c.JSON(http.StatusOK, report)
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(report.HTML))
	default:
		respondError(c, http.StatusBadRequest, "unsupported format")
	}
}

func (a *API) visiblePrediction(c *gin.Context, p *suggest.Prediction) *suggest.Prediction {
	if p == nil {
		return nil
	}
	if dismissed, ok := sessions.Default(c).Get(dismissedPredictionKey).(string); ok && strings.EqualFold(dismissed, p.Activity) {
		return nil
	}
	return p
}
