package launcher

import (
	"fmt"
	"math"
)

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a byte count in base-1024 units with one decimal place.
// Values below 1 KB are printed as whole bytes.
func FormatBytes(bytes uint64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, byteUnits[unit])
}

// ProgressText renders "42% - 1.5 MB / 3.0 MB" for a progress sample.
// The percentage is rounded half up.
func ProgressText(p DownloadProgress) string {
	return fmt.Sprintf("%.0f%% - %s / %s",
		math.Round(p.Percentage),
		FormatBytes(p.DownloadedBytes),
		FormatBytes(p.TotalBytes),
	)
}
