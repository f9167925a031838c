package services

import (
	"regexp"
	"strings"
)

// orderingPrefix matches the numbering used to order folders in the bucket,
// e.g. "01-", "1. " or "3 ".
var orderingPrefix = regexp.MustCompile(`^\d+[-.\s]*`)

// DisplayName strips the ordering prefix from a folder name:
// "01-Editorial" becomes "Editorial".
func DisplayName(folder string) string {
	return orderingPrefix.ReplaceAllString(folder, "")
}

// matchesSlug reports whether a folder is addressed by a URL segment
func matchesSlug(folder, segment string) bool {
	return strings.EqualFold(DisplayName(folder), segment)
}
