package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
)

const salaryNotSpecified = "Salary not specified"

func formatSalary(v float64) string {
	if v == 0 {
		return salaryNotSpecified
	}
	return "£" + humanize.Comma(int64(math.Round(v)))
}

func formatSalaryRange(minV, maxV *float64) string {
	var lo, hi float64
	if minV != nil {
		lo = *minV
	}
	if maxV != nil {
		hi = *maxV
	}
	return fmt.Sprintf("%s - %s", formatSalary(lo), formatSalary(hi))
}

// formatPosted renders a listing timestamp as "2 Jan 2006 (3 days ago)".
// Unparseable input is shown as is.
func formatPosted(created string, now time.Time) string {
	if created == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return created
	}
	return fmt.Sprintf("%s (%s)", t.Format("2 Jan 2006"), humanize.RelTime(t, now, "ago", "from now"))
}

// plainText drops the markup the listings API leaves in descriptions and
// collapses whitespace.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
