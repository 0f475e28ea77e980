package network

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DumpWriter stores response bodies that were not accepted, for inspection.
type DumpWriter interface {
	Write(name string, body []byte) error
}

type FilesystemDump struct {
	dir string
}

func NewFilesystemDump(dir string) (FilesystemDump, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FilesystemDump{}, err
	}
	return FilesystemDump{dir: dir}, nil
}

func (d FilesystemDump) Write(name string, body []byte) error {
	return os.WriteFile(filepath.Join(d.dir, name), body, 0o644)
}

func dumpName(target string, attempt int) string {
	slug := target
	if parsed, err := url.Parse(target); err == nil && parsed.Path != "" {
		slug = parsed.Path
	}
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(slug) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "response"
	}
	return fmt.Sprintf("%s-attempt-%d.html", name, attempt)
}
