package utils

import (
	"sort"
	"strconv"
)

type LabelCount struct {
	Label string
	Count uint64
}

// SortCountsByLabel sorts counters by count (descending), then by label (ascending)
func SortCountsByLabel(counts map[string]uint64) []LabelCount {
	var labelCounts []LabelCount
	for label, count := range counts {
		labelCounts = append(labelCounts, LabelCount{Label: label, Count: count})
	}

	// Sort by count descending, then by label ascending
	sort.Slice(labelCounts, func(i, j int) bool {
		if labelCounts[i].Count == labelCounts[j].Count {
			return labelCounts[i].Label < labelCounts[j].Label
		}
		return labelCounts[i].Count > labelCounts[j].Count
	})

	return labelCounts
}

// FormatNumber formats a number with comma separators for readability
func FormatNumber(n uint64) string {
	str := strconv.FormatUint(n, 10)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
