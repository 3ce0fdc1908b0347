package comm

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	pb "gopkg.in/cheggaaa/pb.v1"
)

var bar *pb.ProgressBar
var barTotal int64
var lastProgressAlpha = 0.0
var lastJSONPercent = -1

// ProgressTheme contains all the characters we need to show progress
type ProgressTheme struct {
	BarStart        string
	BarEnd          string
	Current         string
	CurrentHalfTone string
	Empty           string
	OpSign          string
	StatSign        string
}

var themes = map[string]*ProgressTheme{
	"unicode": {"▐", "▌", "▓", "▒", "░", "•", "✓"},
	"ascii":   {"|", "|", "#", "=", "-", ">", "<"},
	"cp437":   {"▐", "▌", "█", "▒", "░", "∙", "√"},
}

func getCharset() string {
	if runtime.GOOS == "windows" && os.Getenv("OS") != "CYGWIN" {
		return "cp437"
	}

	var utf8 = ".UTF-8"
	if strings.Contains(os.Getenv("LC_ALL"), utf8) ||
		os.Getenv("LC_CTYPE") == "UTF-8" ||
		strings.Contains(os.Getenv("LANG"), utf8) {
		return "unicode"
	}

	return "ascii"
}

var theme = themes[getCharset()]

// GetTheme returns the theme used to show progress
func GetTheme() *ProgressTheme {
	return theme
}

const maxLabelLength = 40

// ProgressLabel sets the string printed next to the progress indicator
func ProgressLabel(label string) {
	if bar == nil {
		return
	}

	if len(label) > maxLabelLength {
		label = fmt.Sprintf("...%s", label[len(label)-(maxLabelLength-3):])
	}
	bar.Postfix(" " + label)
}

// StartProgress begins a period in which progress is regularly printed
func StartProgress() {
	StartProgressWithTotalBytes(0)
}

// StartProgressWithTotalBytes begins a period in which progress is regularly
// printed, letting the bar show units and speed when the total size is known
func StartProgressWithTotalBytes(totalBytes int64) {
	if bar != nil {
		// already in progress
		return
	}

	if totalBytes > 0 {
		barTotal = totalBytes
		bar = pb.New64(totalBytes)
		bar.SetUnits(pb.U_BYTES)
	} else {
		// show to the 1/100th of a percent
		barTotal = 100 * 100
		bar = pb.New64(barTotal)
	}

	bar.ShowCounters = false
	bar.ShowFinalTime = false
	bar.SetMaxWidth(80)
	bar.SetRefreshRate(125 * time.Millisecond)
	bar.Format(theme.BarStart + theme.Current + theme.CurrentHalfTone + theme.Empty + theme.BarEnd)
	bar.NotPrint = settings.noProgress || settings.json || settings.quiet

	bar.Set64(alphaToValue(lastProgressAlpha))
	bar.Start()
}

// PauseProgress temporarily stops printing the progress bar
func PauseProgress() {
	if bar != nil {
		bar.NotPrint = true
	}
}

// ResumeProgress resumes printing the progress bar after PauseProgress was called
func ResumeProgress() {
	if bar != nil {
		bar.NotPrint = settings.noProgress || settings.json || settings.quiet
	}
}

// Progress announces the degree of completion of the current operation, in
// the [0,1] interval
func Progress(alpha float64) {
	lastProgressAlpha = alpha

	if settings.json {
		percent := int(alpha * 100)
		if percent != lastJSONPercent {
			lastJSONPercent = percent
			send("progress", jsonMessage{
				"progression": alpha,
				"percent":     percent,
			})
		}
		return
	}

	if bar != nil {
		bar.Set64(alphaToValue(alpha))
	}
}

// EndProgress stops refreshing the progress bar and erases it
func EndProgress() {
	if bar != nil {
		bar.Set64(barTotal)
		bar.Postfix("")
		bar.Finish()
		bar = nil
	}
	lastProgressAlpha = 0.0
	lastJSONPercent = -1
}

func alphaToValue(alpha float64) int64 {
	return int64(alpha * float64(barTotal))
}
