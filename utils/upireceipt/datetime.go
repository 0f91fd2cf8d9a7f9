package upireceipt

import (
	"regexp"
	"strings"
	"time"
)

const monthName = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var (
	// Google Pay: "24 Aug 2025, 11:28 am". Date and clock must share a line,
	// otherwise an amount on the next line reads as a 24-hour clock.
	dateThenTimeRe = regexp.MustCompile(`(?i)\b(\d{1,2}[ \t]+` + monthName + `[ \t]+\d{4}),?[ \t]+(\d{1,2}[:.]\d{2}(?:[ \t]*[ap]\.?m\.?)?)`)
	// PhonePe: "01:56 pm on 23 Aug 2025"
	timeThenDateRe = regexp.MustCompile(`(?i)\b(\d{1,2}[:.]\d{2}[ \t]*[ap]\.?m\.?)[ \t]+on[ \t]+(\d{1,2}[ \t]+` + monthName + `[ \t]+\d{4})\b`)

	meridiemRe = regexp.MustCompile(`(?i)\s*([ap])\.?m\.?$`)
)

var (
	dateLayouts = []string{"2 Jan 2006", "2 January 2006"}
	timeLayouts = []string{"3:04 PM", "15:04"}
)

// IST is the wall clock payment apps print receipt times in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// ResolveTime parses the transaction timestamp. The Google Pay layout is
// tried first; the PhonePe layout only when the first does not match at all.
// A matched but unparseable timestamp yields nil.
func ResolveTime(text string, loc *time.Location) *time.Time {
	if loc == nil {
		loc = IST
	}
	if m := dateThenTimeRe.FindStringSubmatch(text); len(m) > 2 {
		date, clock := canonicalDate(m[1]), canonicalClock(m[2])
		return tryLayouts(date+", "+clock, loc, func(dl, tl string) string { return dl + ", " + tl })
	}
	if m := timeThenDateRe.FindStringSubmatch(text); len(m) > 2 {
		clock, date := canonicalClock(m[1]), canonicalDate(m[2])
		return tryLayouts(clock+" on "+date, loc, func(dl, tl string) string { return tl + " on " + dl })
	}
	return nil
}

func tryLayouts(value string, loc *time.Location, join func(dateLayout, timeLayout string) string) *time.Time {
	for _, dl := range dateLayouts {
		for _, tl := range timeLayouts {
			if t, err := time.ParseInLocation(join(dl, tl), value, loc); err == nil {
				return &t
			}
		}
	}
	return nil
}

// canonicalDate collapses spacing and month-name quirks ("Aug.", "Sept")
// that time.Parse rejects.
func canonicalDate(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		p = strings.TrimSuffix(p, ".")
		if strings.EqualFold(p, "sept") {
			p = "Sep"
		}
		parts[i] = p
	}
	return strings.Join(parts, " ")
}

// canonicalClock rewrites "11.28am" / "1:56 p.m." as "11:28 AM" / "1:56 PM".
func canonicalClock(s string) string {
	s = strings.TrimSpace(s)
	meridiem := ""
	if m := meridiemRe.FindStringSubmatch(s); len(m) > 1 {
		meridiem = strings.ToUpper(m[1]) + "M"
		s = s[:len(s)-len(m[0])]
	}
	s = strings.Replace(s, ".", ":", 1)
	if meridiem != "" {
		return s + " " + meridiem
	}
	return s
}
