package shellprofile

import (
	"fmt"
	"strings"
)

// markerComment labels the block so re-runs and uninstalls can find it.
const markerComment = "# Added by elixir-ls-installer"

// exportLine renders the PATH extension for the given binary directory.
func exportLine(binDir string) string {
	return fmt.Sprintf(`export PATH="$PATH:%s"`, binDir)
}

// Block returns the full PATH-extension block, newline-terminated.
func Block(binDir string) string {
	return markerComment + "\n" + exportLine(binDir) + "\n"
}

// ContainsBlock reports whether the profile content already carries the
// block for the given binary directory. Either the marker comment or the
// exact export line counts, so manually trimmed profiles are respected.
func ContainsBlock(content, binDir string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == markerComment || trimmed == exportLine(binDir) {
			return true
		}
	}

	return false
}

// Append returns the content with the block appended, separated from
// existing lines by one blank line. The caller decides whether the block
// is already present; Append does not check.
func Append(content, binDir string) string {
	if content == "" {
		return Block(binDir)
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	return content + "\n" + Block(binDir)
}

// Strip returns the content with the block removed, swallowing the blank
// separator Append introduced. Content without the block is returned
// unchanged.
func Strip(content, binDir string) string {
	if !ContainsBlock(content, binDir) {
		return content
	}

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == markerComment {
			if len(kept) > 0 && kept[len(kept)-1] == "" {
				kept = kept[:len(kept)-1]
			}

			continue
		}

		if trimmed == exportLine(binDir) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
