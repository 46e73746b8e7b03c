package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the causalgraph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"                           _                         _     ", "#818cf8"},
		{"   ___ __ _ _   _ ___  __ _| | __ _ _ __ __ _ _ __ | |__  ", "#a78bfa"},
		{"  / __/ _` | | | / __|/ _` | |/ _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
		{" | (_| (_| | |_| \\__ \\ (_| | | (_| | | | (_| | |_) | | | |", "#e879f9"},
		{"  \\___\\__,_|\\__,_|___/\\__,_|_|\\__, |_|  \\__,_| .__/|_| |_|", "#f472b6"},
		{"                               |___/          |_|          ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
