package progress

import (
	"fmt"
	"strings"
	"time"
)

const progressBarWidth = 20

func (dm *DisplayManager) displayLoop() {
	for {
		select {
		case <-dm.ctx.Done():
			return
		case <-dm.stopChan:
			return
		case <-dm.displayTicker.C:
			dm.displayProgress()
		case <-dm.triggerDisplay:
			dm.displayProgress()
		}
	}
}

// displayProgress logs the current line unless it repeats the last one.
func (dm *DisplayManager) displayProgress() {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	output := dm.formatProgress(dm.info)
	if output != "" && output != dm.lastDisplayed {
		dm.logger.Info().Msg(output)
		dm.lastDisplayed = output
	}
}

func (dm *DisplayManager) formatProgress(info ProgressInfo) string {
	if info.Status == ProgressStatusIdle && info.Percentage == 0 {
		return ""
	}

	var builder strings.Builder
	percentage := info.GetPercentage()
	builder.WriteString(fmt.Sprintf("OCR [%s]: %s %s %.1f%%",
		info.TaskID, getStatusIcon(info.Status), createProgressBar(percentage, progressBarWidth), percentage))

	if info.Stage != "" {
		builder.WriteString(fmt.Sprintf(" | %s", info.Stage))
	}

	if elapsed := info.Elapsed(info.LastUpdateTime); elapsed > 0 {
		builder.WriteString(fmt.Sprintf(" | %s", formatDuration(elapsed)))
	}

	if dm.config.ShowETAEstimation && info.ETAText != "" && info.Status == ProgressStatusRunning {
		builder.WriteString(fmt.Sprintf(" | %s", info.ETAText))
	}

	if info.Message != "" {
		builder.WriteString(fmt.Sprintf(" | %s", info.Message))
	}

	return builder.String()
}

func getStatusIcon(status ProgressStatus) string {
	switch status {
	case ProgressStatusRunning:
		return "⏳"
	case ProgressStatusComplete:
		return "✅"
	case ProgressStatusError:
		return "❌"
	case ProgressStatusCancelled:
		return "🚫"
	case ProgressStatusIdle:
		return "💤"
	default:
		return "❓"
	}
}

func createProgressBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}

	filled := int((percentage / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s]", bar)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
