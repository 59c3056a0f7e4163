package cmdlog

import (
	"os"
	"runtime"
)

var emojiSupport = detectEmoji(runtime.GOOS, os.Getenv)

// detectEmoji decides once per process whether the terminal renders emojis.
// Consoles started from cmd.exe or powershell set SESSIONNAME and show boxes
// instead, CI logs are read as plain text
func detectEmoji(goos string, getenv func(string) string) bool {
	if getenv("CI") != "" || getenv("PROPACK_NO_EMOJI") != "" {
		return false
	}
	return goos != "windows" || getenv("SESSIONNAME") == ""
}

// EmojiSupported reports whether output may contain emojis
func EmojiSupported() bool {
	return emojiSupport
}

// Emoji returns e where emojis are rendered and "" elsewhere
func Emoji(e string) string {
	if emojiSupport {
		return e
	}
	return ""
}
