// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import "strings"

var folderNameReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", "\"", "_", "/", "_",
	"\\", "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFolderName makes a display name safe for archive entries and file
// names. Empty or all-whitespace names become "unknown".
func SanitizeFolderName(name string) string {
	sanitized := strings.TrimSpace(folderNameReplacer.Replace(name))
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}
