package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"

	"github.com/chronolog/internal/balance"
	"github.com/chronolog/internal/habit"
	"github.com/chronolog/internal/history"
	"github.com/chronolog/internal/insight"
	"github.com/chronolog/internal/metrics"
	"github.com/chronolog/internal/suggest"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	reportSanitizer = bluemonday.UGCPolicy()
)

const reportTopActivities = 5

// Suggestion 为推荐的下一个活动及其分类图标
type Suggestion struct {
	Activity string `json:"activity"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
}

// SuggestionsView 汇总推荐列表与当前活动
type SuggestionsView struct {
	Suggestions []Suggestion   `json:"suggestions"`
	Current     *history.Entry `json:"current,omitempty"`
}

// Dashboard 汇总同一快照上的全部分析结果
type Dashboard struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Suggestions  SuggestionsView      `json:"suggestions"`
	Prediction   *suggest.Prediction  `json:"prediction"`
	Insights     []insight.Insight    `json:"insights"`
	Habits       []HabitOverview      `json:"habits"`
	Today        insight.DailySummary `json:"today"`
	Balance      balance.Metrics      `json:"balance"`
	Achievements []habit.Achievement  `json:"achievements"`
}

// WeeklyReport 为周报的 Markdown 原文与渲染后的 HTML
type WeeklyReport struct {
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Markdown  string    `json:"markdown"`
	HTML      string    `json:"html"`
}

// AnalyticsService 在日志快照上运行推荐、预测与洞察分析
type AnalyticsService struct {
	logs     LogSource
	classify *ClassificationService
	habits   *HabitService
	detector *insight.Detector
	logger   zerolog.Logger
}

// NewAnalyticsService 构造 AnalyticsService
func NewAnalyticsService(logs LogSource, classify *ClassificationService, habits *HabitService, detector *insight.Detector) *AnalyticsService {
	if detector == nil {
		detector = insight.NewDetector(insight.DefaultConfig(), nil)
	}
	return &AnalyticsService{
		logs:     logs,
		classify: classify,
		habits:   habits,
		detector: detector,
		logger:   zerolog.Nop(),
	}
}

// WithLogger 设置日志输出
func (s *AnalyticsService) WithLogger(l zerolog.Logger) *AnalyticsService {
	s.logger = l
	return s
}

// Suggestions 返回推荐活动及当前活动
func (s *AnalyticsService) Suggestions() SuggestionsView {
	return s.suggestions(s.logs.Snapshot(), s.logs.Now())
}

// Prediction 返回当前最可能进行的活动，没有足够把握时返回 nil
func (s *AnalyticsService) Prediction() *suggest.Prediction {
	return predict(s.logs.Snapshot(), s.logs.Now())
}

// Insights 以 ref 为基准计算洞察，ref 为零值时使用当前时间
func (s *AnalyticsService) Insights(ref time.Time) []insight.Insight {
	if ref.IsZero() {
		ref = s.logs.Now()
	}
	return s.insights(s.logs.Snapshot(), ref)
}

// Daily 返回 day 所在自然日的概况
func (s *AnalyticsService) Daily(day time.Time) insight.DailySummary {
	return insight.AnalyzeDay(s.logs.Snapshot(), day)
}

// Balance 返回最近 7 天的生活平衡
func (s *AnalyticsService) Balance() balance.Metrics {
	return balance.Calculate(s.logs.Snapshot(), s.logs.Now())
}

// Achievements 返回已获得与未解锁的里程碑
func (s *AnalyticsService) Achievements() []habit.Achievement {
	log, now := s.logs.Snapshot(), s.logs.Now()
	return s.habits.Achievements(log, now, balance.Calculate(log, now))
}

// Dashboard 在同一快照上并发计算全部分析
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	log, now := s.logs.Snapshot(), s.logs.Now()
	d := &Dashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Suggestions = s.suggestions(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Prediction = predict(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Insights = s.insights(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Habits = s.habits.Overview(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Today = insight.AnalyzeDay(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Balance = balance.Calculate(log, now)
		d.Achievements = s.habits.Achievements(log, now, d.Balance)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}

// WeeklyReport 生成最近 7 天的周报
func (s *AnalyticsService) WeeklyReport(ctx context.Context) (*WeeklyReport, error) {
	log, now := s.logs.Snapshot(), s.logs.Now()
	weekStart := now.Add(-7 * 24 * time.Hour)

	var (
		habits   []HabitOverview
		insights []insight.Insight
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		habits = s.habits.Overview(log, now)
		return ctx.Err()
	})
	g.Go(func() error {
		insights = s.insights(log, now)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build weekly report: %w", err)
	}

	md := renderReportMarkdown(log.SpansBetween(weekStart.Unix(), now.Unix()), habits, insights, weekStart, now)
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("render weekly report: %w", err)
	}

	return &WeeklyReport{
		WeekStart: weekStart,
		WeekEnd:   now,
		Markdown:  md,
		HTML:      string(reportSanitizer.SanitizeBytes(buf.Bytes())),
	}, nil
}

func (s *AnalyticsService) suggestions(log history.Log, now time.Time) SuggestionsView {
	names := suggest.Suggest(log, now)
	view := SuggestionsView{Suggestions: make([]Suggestion, 0, len(names))}
	for _, name := range names {
		p := s.classify.Classify(name)
		view.Suggestions = append(view.Suggestions, Suggestion{Activity: name, Category: p.Category, Icon: p.Icon})
	}
	if current, ok := suggest.Current(log, now); ok {
		view.Current = &current
	}
	return view
}

func (s *AnalyticsService) insights(log history.Log, ref time.Time) []insight.Insight {
	out := s.detector.Detect(log, ref)
	for _, in := range out {
		metrics.InsightsGenerated.WithLabelValues(string(in.Kind)).Inc()
	}
	return out
}

func predict(log history.Log, now time.Time) *suggest.Prediction {
	p, ok := suggest.Predict(log, now)
	if !ok {
		return nil
	}
	return &p
}

type activityTotal struct {
	name     string
	total    time.Duration
	sessions int
}

func renderReportMarkdown(spans []history.Span, habits []HabitOverview, insights []insight.Insight, from, to time.Time) string {
	totals := make(map[string]*activityTotal)
	for _, span := range spans {
		t, ok := totals[span.Activity]
		if !ok {
			t = &activityTotal{name: span.Activity}
			totals[span.Activity] = t
		}
		t.total += span.Duration()
		t.sessions++
	}
	ranked := make([]*activityTotal, 0, len(totals))
	for _, t := range totals {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > reportTopActivities {
		ranked = ranked[:reportTopActivities]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly report\n\n%s to %s\n\n", from.Format("Jan 2"), to.Format("Jan 2, 2006"))

	b.WriteString("## Time spent\n\n")
	if len(ranked) == 0 {
		b.WriteString("Nothing logged this week.\n\n")
	} else {
		b.WriteString("| Activity | Total | Sessions |\n| --- | --- | --- |\n")
		for _, t := range ranked {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", escapeMarkdownCell(t.name), history.FormatDuration(t.total), t.sessions)
		}
		b.WriteString("\n")
	}

	if len(habits) > 0 {
		b.WriteString("## Habits\n\n")
		for _, h := range habits {
			fmt.Fprintf(&b, "- **%s**: %d-day streak (best %d), %d this week", escapeMarkdownCell(h.Activity), h.CurrentStreak, h.LongestStreak, h.WeeklyActual)
			if h.WeeklyTarget > 0 {
				fmt.Fprintf(&b, " of %d", h.WeeklyTarget)
			}
			fmt.Fprintf(&b, ", %s\n", strings.ToLower(string(h.Trend)))
		}
		b.WriteString("\n")
	}

	if len(insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, in := range insights {
			fmt.Fprintf(&b, "%d. %s\n", in.Rank, in.Text)
		}
	}
	return b.String()
}

func escapeMarkdownCell(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`).Replace(s)
}
