// Package i18n holds the operator-facing strings in Japanese, English and
// Korean.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Lang is a supported UI language.
type Lang string

const (
	Japanese Lang = "ja"
	English  Lang = "en"
	Korean   Lang = "ko"
)

// Default is used when nothing matches.
const Default = Japanese

// supported is ordered so index 0 is the matcher's fallback.
var supported = []language.Tag{language.Japanese, language.English, language.Korean}

var matcher = language.NewMatcher(supported)

// Match maps any BCP 47 tag or Accept-Language style list ("en-US",
// "ko-KR,ko;q=0.9") to a supported language.
func Match(tags ...string) Lang {
	_, idx := language.MatchStrings(matcher, tags...)
	switch supported[idx] {
	case language.English:
		return English
	case language.Korean:
		return Korean
	default:
		return Japanese
	}
}

// Tag returns the language tag for l.
func (l Lang) Tag() language.Tag {
	switch l {
	case English:
		return language.English
	case Korean:
		return language.Korean
	default:
		return language.Japanese
	}
}

// Printer formats numbers with l's digit grouping.
func (l Lang) Printer() *message.Printer {
	return message.NewPrinter(l.Tag())
}

// Messages is one language's string table.
type Messages struct {
	AppName      string
	OverlayTitle string
	AxisX        string
	AxisY        string
	AxisZ        string
	TiltLabel    string
	DistanceUnit string
	AngleUnit    string

	MaxRangeLabel      string
	RequiredRangeLabel string

	SensorLabel     string
	SceneLabel      string
	CoverageLabel   string
	CoveragePending string

	ModeLabel  string
	ModeAuto   string
	ModeManual string

	OutOfRange        string
	CoverageGap       string
	NoSolution        string
	BeyondRecommended string
	TooClose          string
}

var tables = map[Lang]Messages{
	Japanese: {
		AppName:            "深度センサー設置シミュレーター",
		OverlayTitle:       "カメラ位置 (mm) 基準: x0,y0,z0",
		AxisX:              "X",
		AxisY:              "Y",
		AxisZ:              "Z",
		TiltLabel:          "下向き角度",
		DistanceUnit:       "mm",
		AngleUnit:          "°",
		MaxRangeLabel:      "センサー最大距離",
		RequiredRangeLabel: "必要距離",
		SensorLabel:        "センサー",
		SceneLabel:         "シーン",
		CoverageLabel:      "被覆率",
		CoveragePending:    "計算未実装",
		ModeLabel:          "距離調整",
		ModeAuto:           "自動",
		ModeManual:         "手動",
		OutOfRange:         "⚠ センサーの測距範囲を超えています",
		CoverageGap:        "⚠ この距離では視野角の制約により範囲を覆えません",
		NoSolution:         "⚠ 探索範囲内に範囲全体を覆える距離がありません",
		BeyondRecommended:  "⚠ 推奨測距距離を超えています",
		TooClose:           "⚠ 範囲の一部がセンサーの最小距離より近くにあります",
	},
	English: {
		AppName:            "Depth Sensor Mounting Simulator",
		OverlayTitle:       "Camera position (mm) origin: x0,y0,z0",
		AxisX:              "X",
		AxisY:              "Y",
		AxisZ:              "Z",
		TiltLabel:          "Tilt angle",
		DistanceUnit:       "mm",
		AngleUnit:          "°",
		MaxRangeLabel:      "Sensor max range",
		RequiredRangeLabel: "Required distance",
		SensorLabel:        "Sensor",
		SceneLabel:         "Scene",
		CoverageLabel:      "Coverage",
		CoveragePending:    "Not implemented",
		ModeLabel:          "Distance Control",
		ModeAuto:           "Auto",
		ModeManual:         "Manual",
		OutOfRange:         "⚠ Scene exceeds sensor range",
		CoverageGap:        "⚠ Field of view cannot cover the entire scene at this distance",
		NoSolution:         "⚠ No distance within the search range covers the entire scene",
		BeyondRecommended:  "⚠ Scene extends beyond the recommended range",
		TooClose:           "⚠ Part of the scene is closer than the sensor minimum range",
	},
	Korean: {
		AppName:            "깊이 센서 설치 시뮬레이터",
		OverlayTitle:       "카메라 위치 (mm) 기준: x0,y0,z0",
		AxisX:              "X",
		AxisY:              "Y",
		AxisZ:              "Z",
		TiltLabel:          "하향 각도",
		DistanceUnit:       "mm",
		AngleUnit:          "°",
		MaxRangeLabel:      "센서 최대 거리",
		RequiredRangeLabel: "필요 거리",
		SensorLabel:        "센서",
		SceneLabel:         "씬",
		CoverageLabel:      "커버리지",
		CoveragePending:    "미구현",
		ModeLabel:          "거리 조절",
		ModeAuto:           "자동",
		ModeManual:         "수동",
		OutOfRange:         "⚠ 센서의 측정 범위를 초과합니다",
		CoverageGap:        "⚠ 이 거리에서는 시야각으로 전체 장면을 덮을 수 없습니다",
		NoSolution:         "⚠ 탐색 범위 내에 전체 장면을 덮는 거리가 없습니다",
		BeyondRecommended:  "⚠ 권장 측정 거리를 초과합니다",
		TooClose:           "⚠ 장면 일부가 센서 최소 거리보다 가깝습니다",
	},
}

// For returns the string table for l, falling back to Default.
func For(l Lang) Messages {
	if m, ok := tables[l]; ok {
		return m
	}
	return tables[Default]
}

// FormatCoverage renders a coverage ratio, or the pending label when no
// ratio has been computed.
func FormatCoverage(ratio *float64, l Lang) string {
	if ratio == nil {
		return For(l).CoveragePending
	}
	return l.Printer().Sprintf("%.1f%%", *ratio*100)
}
