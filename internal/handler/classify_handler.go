package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type feedbackPayload struct {
	Activity string `json:"activity"`
	Category string `json:"category"`
}

// Classify 对 text 分类，explain=1 时附带特征与各分类得分
func (a *API) Classify(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		respondError(c, http.StatusBadRequest, "text is required")
		return
	}

	resp := gin.H{"prediction": a.classify.Classify(text)}
	if c.Query("explain") == "1" {
		features, scores := a.classify.Explain(text)
		resp["features"] = features
		resp["scores"] = scores
	}
	c.JSON(http.StatusOK, resp)
}

// Categories 列出可选分类
func (a *API) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": a.classify.Categories()})
}

// RecordFeedback 记录用户对分类的修正
func (a *API) RecordFeedback(c *gin.Context) {
	var payload feedbackPayload
	if !bindJSON(c, &payload, "请求参数格式错误") {
		return
	}

	if err := a.classify.RecordFeedback(c.Request.Context(), payload.Activity, payload.Category); err != nil {
		a.respondServiceError(c, err, "保存反馈失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"prediction": a.classify.Classify(payload.Activity),
		"stats":      a.classify.FeedbackStats(),
	})
}

// FeedbackStats 返回反馈学习统计
func (a *API) FeedbackStats(c *gin.Context) {
	c.JSON(http.StatusOK, a.classify.FeedbackStats())
}

// ClearFeedback 清空学习结果
func (a *API) ClearFeedback(c *gin.Context) {
	if err := a.classify.ClearFeedback(c.Request.Context()); err != nil {
		a.respondServiceError(c, err, "清空反馈失败")
		return
	}
	c.Status(http.StatusNoContent)
}
