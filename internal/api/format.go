package telegram

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	app "skin-vision-bot/internal/application"
	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/infrastructure/gemini"
)

const (
	minThresholdPercent = 10
	maxThresholdPercent = 90
	maxMessageRunes     = 4096
)

var errBadThreshold = fmt.Errorf("порог должен быть числом от %d до %d", minThresholdPercent, maxThresholdPercent)

// parseThreshold разбирает аргумент /threshold: "40" или "40%".
func parseThreshold(arg string) (int, error) {
	arg = strings.TrimSuffix(strings.TrimSpace(arg), "%")
	if arg == "" {
		return 0, errBadThreshold
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < minThresholdPercent || n > maxThresholdPercent {
		return 0, errBadThreshold
	}
	return n, nil
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

// formatCaption подпись к аннотированному снимку.
func formatCaption(out *app.AnalysisOutput) string {
	var b strings.Builder
	if out.Stats.TotalDetections == 0 {
		b.WriteString("🔍 Поражения не обнаружены.")
	} else {
		fmt.Fprintf(&b, "🔍 Найдено: %d, типов: %d, средняя уверенность ИИ: %d%%\n",
			out.Stats.TotalDetections, out.Stats.TypesFound, percent(out.Stats.AvgConfidence))
		fmt.Fprintf(&b, "🎚 На снимке при пороге %d%%: %d", out.ThresholdPercent, out.Visible)
	}
	if c := out.Result.Classification; c != nil && c.Top != "" {
		fmt.Fprintf(&b, "\n🏷 Классификация: %s (%d%%)", c.Top, percent(c.Confidence))
	}
	if out.Frame != nil && out.Frame.Skipped > 0 {
		fmt.Fprintf(&b, "\n⚠️ Пропущено рамок с некорректной геометрией: %d", out.Frame.Skipped)
	}
	if out.Result.Rejected > 0 {
		fmt.Fprintf(&b, "\n⚠️ Нераспознанных записей в ответе детектора: %d", out.Result.Rejected)
	}
	return b.String()
}

// formatStats подробная сводка по последнему анализу.
func formatStats(res *entity.AnalysisResult, thresholdPercent int) string {
	stats := entity.ComputeStats(res.Detections)
	if stats.TotalDetections == 0 {
		return "📊 В последнем анализе поражения не обнаружены."
	}

	labels := lo.Map(res.Detections, func(d entity.Detection, _ int) string { return d.Label })
	counts := lo.CountValues(labels)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Последний анализ (%dx%d)\n", res.ImageWidth, res.ImageHeight)
	fmt.Fprintf(&b, "Всего: %d, типов: %d, средняя уверенность: %d%%\n",
		stats.TotalDetections, stats.TypesFound, percent(stats.AvgConfidence))
	for _, label := range lo.Uniq(labels) {
		fmt.Fprintf(&b, "• %s: %d\n", label, counts[label])
	}
	fmt.Fprintf(&b, "Текущий порог: %d%%", thresholdPercent)
	return b.String()
}

// formatInsight текст заключения или заглушка.
// Без заключения и без ошибки генератор не подключён.
func formatInsight(ins *entity.Insight, err error) string {
	switch {
	case ins != nil && ins.Text != "":
		return ins.Text
	case err == nil || errors.Is(err, gemini.ErrNotConfigured):
		return msgInsightsNotConfigured
	case errors.Is(err, gemini.ErrEmptyInsight):
		return msgNoInsights
	default:
		return msgInsightsFailed
	}
}

// splitMessage режет длинный текст по строкам, чтобы уложиться в лимит Telegram.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
