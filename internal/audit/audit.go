package audit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/nao1215/stubscan/internal/model"
)

// ErrSourceNotFound is returned when either input file does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// listPattern matches an effects array and captures its body.
const listPattern = `effects:\s*\[(?<list>[^\]]+)\]`

// Run reads both files and audits them.
func Run(appPath, effectsPath string) (*model.AuditReport, error) {
	app, err := readFile(appPath)
	if err != nil {
		return nil, err
	}
	effects, err := readFile(effectsPath)
	if err != nil {
		return nil, err
	}

	report, err := Audit(app, effects)
	if err != nil {
		return nil, err
	}
	report.AppSource = appPath
	report.EffectsSource = effectsPath
	return report, nil
}

// Audit compares the ids listed in appContent with the registrations in
// effectsContent.
func Audit(appContent, effectsContent string) (*model.AuditReport, error) {
	mentioned, err := ListedEffects(appContent)
	if err != nil {
		return nil, err
	}

	report := &model.AuditReport{
		Mentioned: mentioned,
		Found:     make([]string, 0),
		Missing:   make([]string, 0),
	}
	for _, id := range mentioned {
		if IsRegistered(effectsContent, id) {
			report.Found = append(report.Found, id)
		} else {
			report.Missing = append(report.Missing, id)
		}
	}
	return report, nil
}

// ListedEffects returns the unique ids of every effects array in content,
// in first-seen order. Quotes are stripped and empty entries skipped.
func ListedEffects(content string) ([]string, error) {
	re, err := regexp2.Compile(listPattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile effects list pattern: %w", err)
	}

	ids := make([]string, 0)
	seen := make(map[string]bool)

	m, err := re.FindStringMatch(content)
	for m != nil {
		for _, item := range strings.Split(m.GroupByName("list").String(), ",") {
			id := strings.Trim(strings.TrimSpace(item), "'\"`")
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, errors.New("failed to match effects lists")
	}
	return ids, nil
}

// IsRegistered reports whether effectsContent registers id with any quote style.
func IsRegistered(effectsContent, id string) bool {
	for _, q := range []string{"'", `"`, "`"} {
		if strings.Contains(effectsContent, "register("+q+id+q) {
			return true
		}
	}
	return false
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Reading user-specified files is the purpose of this tool
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
