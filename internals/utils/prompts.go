package utils

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// SelectPrompt runs prompt and exits when it was aborted
func SelectPrompt(prompt *promptui.Select) string {
	_, res, err := prompt.Run()
	if err != nil {
		fmt.Println("Aborting")
		os.Exit(1)
	}
	return res
}

// StringPrompt runs prompt and exits when it was aborted
func StringPrompt(prompt *promptui.Prompt) string {
	res, err := prompt.Run()
	if err != nil {
		fmt.Println("Aborting")
		os.Exit(1)
	}
	return res
}

// BoolPrompt runs a confirm prompt. Only ^C exits
func BoolPrompt(prompt *promptui.Prompt) bool {
	_, err := prompt.Run()
	if err != nil {
		if err.Error() == "^C" {
			fmt.Println("Aborting")
			os.Exit(1)
		}
		return false
	}
	return true
}
