package services

import "strings"

// LabelCounts maps a lower-cased label to a count. Lookups ignore case.
type LabelCounts map[string]int

// Add accumulates n under label. Blank labels are ignored.
func (c LabelCounts) Add(label string, n int) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" || n == 0 {
		return
	}
	c[key] += n
}

// Get returns the count recorded for label regardless of its case.
func (c LabelCounts) Get(label string) int {
	return c[strings.ToLower(strings.TrimSpace(label))]
}

// Total sums every bucket.
func (c LabelCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// NotificationStats summarises the unread, visible part of an inbox.
type NotificationStats struct {
	UnreadTotal int         `json:"unread_total"`
	ByCategory  LabelCounts `json:"by_category"`
	BySeverity  LabelCounts `json:"by_severity"`
}

func newNotificationStats() NotificationStats {
	return NotificationStats{
		ByCategory: LabelCounts{},
		BySeverity: LabelCounts{},
	}
}

type labelBucket struct {
	Label *string
	Total int
}

func (c LabelCounts) addBuckets(buckets []labelBucket) {
	for _, b := range buckets {
		if b.Label == nil {
			continue
		}
		c.Add(*b.Label, b.Total)
	}
}
