package utils

import (
	"encoding/json"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"
)

// lineMatch matches the git output
var lineMatch = regexp.MustCompile("(.*)\r?\n?$")

// SimpleGitExec runs a git command and returns the output in a easy to process way
func SimpleGitExec(args string) (string, error) {
	splitArgs := strings.Split(args, " ")
	cmd := exec.Command("git", splitArgs...)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	cleanOut := lineMatch.FindStringSubmatch(string(out))
	return cleanOut[1], nil
}

// ReadJSONFile parses the given file into i
func ReadJSONFile(filename string, i interface{}) error {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, i)
}

// HumanCount formats n with thousands separators, "12,345"
func HumanCount[N constraints.Integer](n N) string {
	return humanize.Comma(int64(n))
}
