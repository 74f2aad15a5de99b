package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/chronolog/internal/history"
)

// routineSlot 是一天中某个活动的计划开始时刻
type routineSlot struct {
	activity string
	note     string
	hour     int
	minute   int
	// 每周只在这些星期出现，空表示每天
	weekdays []time.Weekday
	// 跳过的概率
	skip float64
}

var routine = []routineSlot{
	{activity: "Sleep", hour: 0, minute: 0},
	{activity: "Breakfast", hour: 7, minute: 0},
	{activity: "Gym", note: "strength", hour: 7, minute: 30, weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday}, skip: 0.2},
	{activity: "Work", hour: 9, minute: 0, weekdays: workdays},
	{activity: "Lunch", hour: 12, minute: 30},
	{activity: "Work", hour: 13, minute: 15, weekdays: workdays},
	{activity: "Commute", hour: 18, minute: 0, weekdays: workdays},
	{activity: "Dinner", hour: 19, minute: 0},
	{activity: "Reading", hour: 21, minute: 0, skip: 0.3},
	{activity: "Meditation", hour: 22, minute: 30, skip: 0.4},
}

var workdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// 测试数据生成器：输出可用 `chronolog import` 导入的 TSV
func main() {
	days := flag.Int("days", 42, "number of days to generate")
	seed := flag.Int64("seed", 1, "random seed")
	out := flag.String("out", "", "output file, stdout when empty")
	flag.Parse()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -*days)
	l := generateRoutine(start, *days, rand.New(rand.NewSource(*seed)))

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal("创建输出文件失败:", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := history.WriteTSV(bw, l); err != nil {
		log.Fatal("写入测试数据失败:", err)
	}
	if err := bw.Flush(); err != nil {
		log.Fatal("写入测试数据失败:", err)
	}
	fmt.Fprintf(os.Stderr, "生成 %d 天测试数据，共 %d 条记录\n", *days, l.Len())
}

// generateRoutine 按作息表生成 days 天的日志，开始时间带 ±10 分钟抖动
func generateRoutine(start time.Time, days int, rng *rand.Rand) history.Log {
	var entries []history.Entry
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		for _, slot := range routine {
			if !slot.activeOn(day.Weekday()) || rng.Float64() < slot.skip {
				continue
			}
			jitter := time.Duration(rng.Intn(21)-10) * time.Minute
			if slot.hour == 0 && slot.minute == 0 {
				jitter = 0
			}
			at := day.Add(time.Duration(slot.hour)*time.Hour + time.Duration(slot.minute)*time.Minute + jitter)
			entries = append(entries, history.Entry{StartTime: at.Unix(), Activity: slot.activity, Note: slot.note})
		}
	}
	return history.New(entries, start.AddDate(0, 0, days).Unix())
}

func (s routineSlot) activeOn(day time.Weekday) bool {
	if len(s.weekdays) == 0 {
		return true
	}
	for _, w := range s.weekdays {
		if w == day {
			return true
		}
	}
	return false
}
