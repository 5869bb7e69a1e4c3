// Package metrics 定义业务计数器
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TouchesRecorded 学生提交（按学年/班级）
	TouchesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classsync",
		Name:      "touches_recorded_total",
		Help:      "Homework submissions recorded by pupils.",
	}, []string{"grade", "class_id"})

	// ChecksToggled 教师确认切换
	ChecksToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classsync",
		Name:      "checks_toggled_total",
		Help:      "Teacher check toggles, labelled by resulting state.",
	}, []string{"state"})

	// ScanDetections 读卡成功（按后端）
	ScanDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classsync",
		Name:      "scan_detections_total",
		Help:      "Card detections delivered per scan backend.",
	}, []string{"backend"})

	// CardLookups 卡号解析结果
	CardLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classsync",
		Name:      "card_lookups_total",
		Help:      "Card id resolutions by outcome.",
	}, []string{"outcome"})

	// Exports 导出次数（按类型）
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classsync",
		Name:      "exports_total",
		Help:      "Exports generated by kind.",
	}, []string{"kind"})
)
