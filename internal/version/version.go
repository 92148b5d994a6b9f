// Package version хранит сведения о сборке, задаваемые через -ldflags.
package version

import (
	"fmt"
	"io"
	"os"
)

var (
	// buildVersion — версия сборки приложения.
	buildVersion string
	// buildDate — дата сборки приложения.
	buildDate string
	// buildCommit — хеш коммита сборки.
	buildCommit string
)

// Info — сведения о сборке. Незаданные поля равны "N/A".
type Info struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Get возвращает сведения о текущей сборке.
func Get() Info {
	return Info{
		Version: orNA(buildVersion),
		Date:    orNA(buildDate),
		Commit:  orNA(buildCommit),
	}
}

// Fprint выводит сведения о сборке в w.
func (i Info) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", i.Version)
	fmt.Fprintf(w, "Build date: %s\n", i.Date)
	fmt.Fprintf(w, "Build commit: %s\n", i.Commit)
}

// PrintBuildInfo выводит информацию о сборке приложения в stdout.
func PrintBuildInfo() {
	Get().Fprint(os.Stdout)
}
