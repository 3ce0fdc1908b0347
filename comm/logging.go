package comm

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
)

var settings = &struct {
	noProgress bool
	quiet      bool
	verbose    bool
	json       bool
	panic      bool
}{
	false,
	false,
	false,
	false,
	false,
}

// Configure sets all logging options in one go
func Configure(noProgress, quiet, verbose, json, panic bool) {
	settings.noProgress = noProgress
	settings.quiet = quiet
	settings.verbose = verbose
	settings.json = json
	settings.panic = panic
}

type jsonMessage map[string]interface{}

// Opf prints a formatted string informing the user on what operation we're doing
func Opf(format string, args ...interface{}) {
	Logf("%s %s", theme.OpSign, fmt.Sprintf(format, args...))
}

// Statf prints a formatted string informing the user how fast the operation went
func Statf(format string, args ...interface{}) {
	Logf("%s %s", theme.StatSign, fmt.Sprintf(format, args...))
}

// Log sends an informational message to the client
func Log(msg string) {
	Logl("info", msg)
}

// Logf sends a formatted informational message to the client
func Logf(format string, args ...interface{}) {
	Loglf("info", format, args...)
}

// Warn lets the user know about a problem that's non-critical
func Warn(msg string) {
	Logl("warning", msg)
}

// Warnf is a formatted variant of Warn
func Warnf(format string, args ...interface{}) {
	Loglf("warning", format, args...)
}

// Debug messages are like Info messages, but printed only when verbose
func Debug(msg string) {
	Logl("debug", msg)
}

// Debugf is a formatted variant of Debug
func Debugf(format string, args ...interface{}) {
	Loglf("debug", format, args...)
}

// Logl logs a message of a given level
func Logl(level string, msg string) {
	send("log", jsonMessage{
		"message": msg,
		"level":   level,
	})
}

// Loglf logs a formatted message of a given level
func Loglf(level string, format string, args ...interface{}) {
	Logl(level, fmt.Sprintf(format, args...))
}

// Die exits with a non-zero exit code after giving a reason to the client
func Die(msg string) {
	send("error", jsonMessage{
		"message": msg,
	})
}

// Dief is a formatted variant of Die
func Dief(format string, args ...interface{}) {
	Die(fmt.Sprintf(format, args...))
}

// Result sends a result
func Result(value interface{}) {
	send("result", jsonMessage{
		"value": value,
	})
}

func send(msgType string, obj jsonMessage) {
	if settings.json {
		obj["type"] = msgType
		obj["time"] = time.Now().UTC().Unix()
		if msgType == "log" {
			if obj["level"] == "debug" && !(settings.verbose && !settings.quiet) {
				return
			}
		}

		sendJSON(obj)
		if msgType == "error" {
			os.Exit(1)
		}
		return
	}

	switch msgType {
	case "log":
		switch obj["level"] {
		case "info":
			if !settings.quiet {
				log.Println(obj["message"])
			}
		case "debug":
			if !settings.quiet && settings.verbose {
				log.Println(obj["message"])
			}
		case "warning":
			log.Printf("%s: %s\n", color.YellowString("warning"), obj["message"])
		default:
			log.Printf("%s: %s\n", obj["level"], obj["message"])
		}
	case "error":
		EndProgress()
		if settings.panic {
			log.Panicln(obj["message"])
		} else {
			log.Printf("%s: %s\n", color.RedString("error"), obj["message"])
			os.Exit(1)
		}
	case "result", "progress":
		// only shown in json mode
	default:
		log.Println(msgType, obj)
	}
}

// sends a JSON-encoded message to the client
func sendJSON(obj jsonMessage) {
	payload, _ := json.Marshal(obj)
	fmt.Println(string(payload))
}
