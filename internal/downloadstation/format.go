package downloadstation

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// transfer returns the task's transfer stats, or nil when the server
// did not include them.
func (t *Task) transfer() *Transfer {
	if t.Additional == nil {
		return nil
	}
	return t.Additional.Transfer
}

// HumanSize renders the task's total size in decimal units.
func (t *Task) HumanSize() string {
	return humanize.Bytes(uint64(t.Size))
}

// Progress returns the download progress as a rounded percentage.
// Zero when the size or transfer stats are unknown.
func (t *Task) Progress() float64 {
	tr := t.transfer()
	if tr == nil || t.Size <= 0 {
		return 0
	}
	return math.Round(float64(tr.SizeDownloaded) / float64(t.Size) * 100)
}

// HumanSpeed renders the current transfer rate as "(1.2 MB/s)". Only
// downloading tasks (download rate) and seeding tasks (upload rate)
// have a meaningful rate; everything else yields the empty string.
func (t *Task) HumanSpeed() string {
	tr := t.transfer()
	if tr == nil {
		return ""
	}

	var speed int64
	switch t.Status {
	case StatusDownloading:
		speed = tr.SpeedDownload
	case StatusSeeding:
		speed = tr.SpeedUpload
	default:
		return ""
	}
	if speed <= 0 {
		return ""
	}
	return fmt.Sprintf("(%s/s)", humanize.Bytes(uint64(speed)))
}

// TimeLeft estimates the remaining download time in seconds. Returns
// -1 when the task is stalled and 0 when the task is not downloading
// or has no transfer stats.
func (t *Task) TimeLeft() int64 {
	tr := t.transfer()
	if t.Status != StatusDownloading || tr == nil {
		return 0
	}
	if tr.SpeedDownload == 0 {
		return -1
	}
	return int64(math.Floor(float64(t.Size-tr.SizeDownloaded) / float64(tr.SpeedDownload)))
}

// HumanTimeLeft renders the remaining download time, empty for tasks
// that are not downloading.
func (t *Task) HumanTimeLeft() string {
	tr := t.transfer()
	if t.Status != StatusDownloading || tr == nil {
		return ""
	}
	return FormatSeconds(t.TimeLeft())
}

// Ratio returns the upload/download ratio, 0 when nothing has been
// downloaded yet.
func (t *Task) Ratio() float64 {
	tr := t.transfer()
	if tr == nil || tr.SizeDownloaded == 0 {
		return 0
	}
	return float64(tr.SizeUploaded) / float64(tr.SizeDownloaded)
}

// FormatSeconds renders a duration in seconds as a short human string
// such as "42 s", "3 m 20 s", "3 h 28 m" or "2 d 5 h 0 m". Negative
// input means the duration is unknown.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		return "Unknown"
	}
	if seconds < 60 {
		return fmt.Sprintf("%d s", seconds)
	}
	if seconds < 3600 {
		minutes := seconds / 60
		return fmt.Sprintf("%d m %d s", minutes, seconds-60*minutes)
	}
	if seconds < 86400 {
		hours := seconds / 3600
		minutes := (seconds - hours*3600) / 60
		return fmt.Sprintf("%d h %d m", hours, minutes)
	}
	days := seconds / 86400
	hours := (seconds - days*86400) / 3600
	minutes := (seconds - days*86400 - hours*3600) / 60
	return fmt.Sprintf("%d d %d h %d m", days, hours, minutes)
}
