// Package prompt loads the static texts of the chat client: the system
// message sent with every request and the strings shown to the user.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultMessagesFile      = "Messages.json"
	DefaultSystemMessageFile = "SystemMessage.txt"
)

// UIStrings are the fixed lines printed by the session loop.
type UIStrings struct {
	Greeting   string `json:"greeting"`
	Prompt     string `json:"prompt"`
	EmptyInput string `json:"emptyInput"`
	Exit       string `json:"exit"`
}

// DefaultUIStrings fill keys a messages file leaves out.
func DefaultUIStrings() UIStrings {
	return UIStrings{
		Greeting:   "Salve, seeker of wisdom. What would you like to know about our glorious Roman and Byzantine leaders?",
		Prompt:     "Quaeris quid (What is your question)?",
		EmptyInput: "Me paenitet, non audivi te. (I'm sorry, I didn't hear you)",
		Exit:       "Vale et gratias tibi ago for using Magnus Liber Imperatorum.",
	}
}

// Locate returns the first dirs/name that exists. A name containing a path
// separator is checked as given.
func Locate(name string, dirs []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("file name is required")
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("locate %s: %w", name, err)
		}
		return name, nil
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("locate %s: not found in %s: %w", name, strings.Join(dirs, ", "), os.ErrNotExist)
}

// LoadUIStrings decodes a messages file.
func LoadUIStrings(path string) (UIStrings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UIStrings{}, fmt.Errorf("read messages file: %w", err)
	}

	ui := DefaultUIStrings()
	if err := json.Unmarshal(data, &ui); err != nil {
		return UIStrings{}, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	return ui, nil
}

// LoadSystemMessage reads the system message text. Blank files are rejected.
func LoadSystemMessage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system message: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("system message %s is empty", path)
	}
	return text, nil
}
