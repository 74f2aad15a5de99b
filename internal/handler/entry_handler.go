package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronolog/internal/history"
	"github.com/chronolog/internal/service"
)

type appendEntryPayload struct {
	Activity string   `json:"activity"`
	Note     string   `json:"note"`
	Lat      *float64 `json:"lat"`
	Long     *float64 `json:"long"`
}

type editEntryPayload struct {
	StartTime string `json:"start_time"`
	Activity  string `json:"activity"`
	Note      string `json:"note"`
}

type entryView struct {
	history.Span
	Duration string `json:"duration"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
}

// ListEntries 返回时间段列表，from/to 为可选的 unix 秒
func (a *API) ListEntries(c *gin.Context) {
	from, err := parseInt64Query(c, "from")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseInt64Query(c, "to")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	log := a.logs.Snapshot()
	spans := log.SpansBetween(from, to)
	items := make([]entryView, 0, len(spans))
	for _, span := range spans {
		p := a.classify.Classify(span.Activity)
		items = append(items, entryView{
			Span:     span,
			Duration: history.FormatDuration(span.Duration()),
			Category: p.Category,
			Icon:     p.Icon,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":                     items,
		"current_activity_start_time": log.CurrentActivityStartTime(),
	})
}

// AppendEntry 结束当前活动并记录为新条目
func (a *API) AppendEntry(c *gin.Context) {
	var payload appendEntryPayload
	if !bindJSON(c, &payload, "请求参数格式错误") {
		return
	}

	input := service.AppendInput{Activity: payload.Activity, Note: payload.Note}
	if payload.Lat != nil && payload.Long != nil {
		input.Location = &history.LatLong{Lat: *payload.Lat, Long: *payload.Long}
	}

	log, err := a.logs.Append(input)
	if err != nil {
		a.respondServiceError(c, err, "记录活动失败")
		return
	}

	last, _ := log.Last()
	c.JSON(http.StatusCreated, gin.H{
		"entry":                       last,
		"current_activity_start_time": log.CurrentActivityStartTime(),
	})
}

// EditEntry 修改指定开始时间的条目
func (a *API) EditEntry(c *gin.Context) {
	start, err := parseInt64Param(c, "start")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload editEntryPayload
	if !bindJSON(c, &payload, "请求参数格式错误") {
		return
	}

	log, err := a.logs.Edit(start, service.EditInput{
		StartSpec: payload.StartTime,
		Activity:  payload.Activity,
		Note:      payload.Note,
	})
	if err != nil {
		a.respondServiceError(c, err, "更新活动失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":                     log.Entries(),
		"current_activity_start_time": log.CurrentActivityStartTime(),
	})
}

// DeleteEntry 删除条目，时间段并入前一条
func (a *API) DeleteEntry(c *gin.Context) {
	start, err := parseInt64Param(c, "start")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := a.logs.Delete(start); err != nil {
		a.respondServiceError(c, err, "删除活动失败")
		return
	}
	c.Status(http.StatusNoContent)
}
