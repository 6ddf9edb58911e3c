// Package spreadsheet turns already-parsed spreadsheet rows into session
// inputs for manual insertion. Header names are matched against Romanian
// and English synonyms, case- and diacritic-insensitively.
package spreadsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/markusmobius/go-dateparser"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/radum/pontaj/internal/models"
	"github.com/radum/pontaj/internal/timeutil"
)

// Row is a single spreadsheet row keyed by its original header names.
type Row map[string]any

// Result carries the parsed entries along with per-row errors and
// warnings. Erroneous rows are dropped; warned rows are kept.
type Result struct {
	Entries  []models.ImportedSessionInput
	Errors   []string
	Warnings []string
}

type canonicalKey string

const (
	keyDate     canonicalKey = "date"
	keyStart    canonicalKey = "start"
	keyEnd      canonicalKey = "end"
	keyType     canonicalKey = "type"
	keyNote     canonicalKey = "note"
	keyAddress  canonicalKey = "address"
	keyDuration canonicalKey = "duration"
)

var headerMap = map[string]canonicalKey{
	"date":               keyDate,
	"data":               keyDate,
	"data zilei":         keyDate,
	"zi":                 keyDate,
	"ziua":               keyDate,
	"day":                keyDate,
	"work date":          keyDate,
	"start":              keyStart,
	"ora start":          keyStart,
	"ora inceput":        keyStart,
	"start time":         keyStart,
	"inceput":            keyStart,
	"ora intrare":        keyStart,
	"start hour":         keyStart,
	"end":                keyEnd,
	"stop":               keyEnd,
	"sfarsit":            keyEnd,
	"ora sfarsit":        keyEnd,
	"ora final":          keyEnd,
	"end time":           keyEnd,
	"finish":             keyEnd,
	"ora iesire":         keyEnd,
	"type":               keyType,
	"tip":                keyType,
	"categorie":          keyType,
	"category":           keyType,
	"note":               keyNote,
	"notita":             keyNote,
	"nota":               keyNote,
	"observatii":         keyNote,
	"observatie":         keyNote,
	"obs":                keyNote,
	"comentariu":         keyNote,
	"comment":            keyNote,
	"address":            keyAddress,
	"adresa":             keyAddress,
	"locatie":            keyAddress,
	"loc":                keyAddress,
	"location":           keyAddress,
	"duration":           keyDuration,
	"durata":             keyDuration,
	"duration minutes":   keyDuration,
	"durata minute":      keyDuration,
	"minutes":            keyDuration,
	"minute":             keyDuration,
	"min":                keyDuration,
	"duration (minutes)": keyDuration,
}

var typeMap = map[string]models.SessionType{
	"work":      models.Work,
	"lucru":     models.Work,
	"munca":     models.Work,
	"pauza":     models.Break,
	"break":     models.Break,
	"tigara":    models.Cigarette,
	"cigarette": models.Cigarette,
}

// Excel serial day 0 is 1899-12-30 (the off-by-two Lotus convention).
var excelEpochMs = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC).
	UnixMilli()

const msInDay = 24 * timeutil.MsInHour

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var (
	nonAlnum   = regexp.MustCompile(`[^0-9a-zA-Z]+`)
	isoDateRe  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	roDateRe   = regexp.MustCompile(`^(\d{1,2})[.\-](\d{1,2})[.\-](\d{4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	clockDecRe = regexp.MustCompile(`^(\d{1,2})[.,](\d{1,2})$`)
)

// ParseRows converts rows into session inputs. Every produced entry is
// marked manual; rows that cannot yield a valid interval are reported in
// Errors and skipped.
func ParseRows(rows []Row) Result {
	var res Result

	for idx, raw := range rows {
		row := normalizeRow(raw)
		// header occupies the first row, entries are 1-based below it
		label := idx + 2

		typ, typeKnown, original := parseType(row[keyType])
		if !typeKnown {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"row %d: unknown type %q, defaulting to work",
				label, original,
			))
		}

		startedAt, startNote := resolveStart(row)
		if startNote != "" {
			res.Warnings = append(
				res.Warnings,
				fmt.Sprintf("row %d: %s", label, startNote),
			)
		}

		if startedAt == nil {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: unable to interpret the start moment", label,
			))

			continue
		}

		endedAt, endNote := resolveEnd(row, *startedAt)
		if endNote != "" {
			res.Warnings = append(
				res.Warnings,
				fmt.Sprintf("row %d: %s", label, endNote),
			)
		}

		if endedAt != nil && *endedAt <= *startedAt {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"row %d: end comes before start", label,
			))

			continue
		}

		res.Entries = append(res.Entries, models.ImportedSessionInput{
			Type:      typ,
			StartedAt: *startedAt,
			EndedAt:   endedAt,
			Note:      optionalString(row[keyNote]),
			Address:   optionalString(row[keyAddress]),
			Manual:    true,
		})
	}

	return res
}

// normalizeRow maps raw header names onto canonical keys. The first
// matching header wins.
func normalizeRow(raw Row) map[canonicalKey]any {
	row := make(map[canonicalKey]any)

	for rawKey, value := range raw {
		canonical, ok := headerMap[normalizeKey(rawKey)]
		if !ok {
			continue
		}

		if _, exists := row[canonical]; !exists {
			row[canonical] = value
		}
	}

	return row
}

func normalizeKey(input string) string {
	folded, _, err := transform.String(stripMarks, input)
	if err != nil {
		folded = input
	}

	folded = nonAlnum.ReplaceAllString(folded, " ")

	return strings.ToLower(strings.TrimSpace(folded))
}

func parseType(raw any) (models.SessionType, bool, string) {
	if raw == nil {
		return models.Work, true, ""
	}

	original := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw)))
	if original == "" {
		return models.Work, true, ""
	}

	if t, ok := typeMap[original]; ok {
		return t, true, ""
	}

	folded := normalizeKey(original)
	if t, ok := typeMap[folded]; ok {
		return t, true, ""
	}

	if t, ok := typeMap[strings.ReplaceAll(folded, " ", "")]; ok {
		return t, true, ""
	}

	return models.Work, false, original
}

func resolveStart(row map[canonicalKey]any) (*int64, string) {
	date, start := row[keyDate], row[keyStart]

	if !isEmpty(start) {
		if ts := combineDateAndTime(date, start, nil); ts != nil {
			return ts, ""
		}

		if ts := parseDateTimeValue(start); ts != nil {
			return ts, ""
		}
	}

	if !isEmpty(date) {
		if ts := parseDateCell(date); ts != nil {
			return ts, "start hour is missing, assuming 00:00"
		}
	}

	return nil, ""
}

func resolveEnd(row map[canonicalKey]any, startedAt int64) (*int64, string) {
	date, end, duration := row[keyDate], row[keyEnd], row[keyDuration]

	if !isEmpty(end) {
		if ts := combineDateAndTime(date, end, &startedAt); ts != nil {
			return ts, ""
		}

		if ts := parseDateTimeValue(end); ts != nil {
			return ts, ""
		}
	}

	if !isEmpty(duration) {
		if v, ok := parseNumber(duration); ok {
			// values above 24 read as minutes, smaller ones as hours
			durationMs := int64(v * float64(timeutil.MsInHour))
			if v > 24 {
				durationMs = int64(v * float64(timeutil.MsInMinute))
			}

			ended := startedAt + durationMs

			return &ended, "end derived from duration"
		}
	}

	return nil, "end is missing, session is considered still open"
}

func combineDateAndTime(
	dateValue, timeValue any,
	fallbackStart *int64,
) *int64 {
	dateMs := parseDateCell(dateValue)
	timeOffset := parseTimeCell(timeValue)

	if dateMs != nil && timeOffset != nil {
		ts := *dateMs + *timeOffset
		return &ts
	}

	if timeOffset != nil && fallbackStart != nil {
		ts := timeutil.StartOfDay(*fallbackStart) + *timeOffset
		return &ts
	}

	return dateMs
}

func parseDateCell(value any) *int64 {
	if isEmpty(value) {
		return nil
	}

	switch v := value.(type) {
	case float64:
		if v == 0 {
			return nil
		}

		ts := excelEpochMs + int64(v*float64(msInDay))

		return &ts
	case int:
		if v == 0 {
			return nil
		}

		ts := excelEpochMs + int64(v)*msInDay

		return &ts
	case time.Time:
		ts := v.UnixMilli()
		return &ts
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return nil
	}

	if m := isoDateRe.FindStringSubmatch(str); m != nil {
		return localTimeMs(m[1], m[2], m[3], m[4], m[5], m[6])
	}

	if m := roDateRe.FindStringSubmatch(str); m != nil {
		return localTimeMs(m[3], m[2], m[1], m[4], m[5], m[6])
	}

	return parseWithDateparser(str)
}

func parseTimeCell(value any) *int64 {
	if isEmpty(value) {
		return nil
	}

	if v, isNum := numberValue(value); isNum {
		var offset int64

		switch {
		case v >= 1440:
			// Excel datetime serial: only the fractional day matters
			frac := v - float64(int64(v))
			offset = int64(frac * float64(msInDay))
		case v > 24:
			offset = int64(v * float64(timeutil.MsInMinute))
		case v >= 1:
			offset = int64(v * float64(timeutil.MsInHour))
		default:
			offset = int64(v * float64(msInDay))
		}

		return &offset
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return nil
	}

	if m := clockRe.FindStringSubmatch(str); m != nil {
		hh, _ := strconv.ParseInt(m[1], 10, 64)
		mm, _ := strconv.ParseInt(m[2], 10, 64)

		var ss int64
		if m[3] != "" {
			ss, _ = strconv.ParseInt(m[3], 10, 64)
		}

		offset := ((hh*60+mm)*60 + ss) * timeutil.MsInSecond

		return &offset
	}

	if m := clockDecRe.FindStringSubmatch(str); m != nil {
		hh, _ := strconv.ParseFloat(m[1], 64)
		frac, _ := strconv.ParseFloat("0."+m[2], 64)

		offset := int64((hh + frac) * float64(timeutil.MsInHour))

		return &offset
	}

	if ts := parseDateTimeValue(str); ts != nil {
		offset := *ts - timeutil.StartOfDay(*ts)
		return &offset
	}

	return nil
}

func parseDateTimeValue(value any) *int64 {
	if isEmpty(value) {
		return nil
	}

	if v, isNum := numberValue(value); isNum {
		ts := excelEpochMs + int64(v*float64(msInDay))
		return &ts
	}

	if v, ok := value.(time.Time); ok {
		ts := v.UnixMilli()
		return &ts
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return nil
	}

	if m := roDateRe.FindStringSubmatch(str); m != nil {
		return localTimeMs(m[3], m[2], m[1], m[4], m[5], m[6])
	}

	return parseWithDateparser(str)
}

// parseWithDateparser is the last-resort fallback for free-form date
// strings.
func parseWithDateparser(str string) *int64 {
	dt, err := dateparser.Parse(nil, str)
	if err != nil {
		return nil
	}

	ts := dt.Time.UnixMilli()

	return &ts
}

func localTimeMs(y, m, d, hh, mm, ss string) *int64 {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)

	var hour, minute, sec int

	if hh != "" {
		hour, _ = strconv.Atoi(hh)
	}

	if mm != "" {
		minute, _ = strconv.Atoi(mm)
	}

	if ss != "" {
		sec, _ = strconv.Atoi(ss)
	}

	ts := time.Date(
		year, time.Month(month), day, hour, minute, sec, 0, time.Local,
	).UnixMilli()

	return &ts
}

func parseNumber(value any) (float64, bool) {
	if v, isNum := numberValue(value); isNum {
		return v, true
	}

	raw := strings.TrimSpace(fmt.Sprint(value))
	if raw == "" {
		return 0, false
	}

	// H:MM durations read as minutes
	if m := clockRe.FindStringSubmatch(raw); m != nil && m[3] == "" {
		hh, _ := strconv.ParseFloat(m[1], 64)
		mm, _ := strconv.ParseFloat(m[2], 64)

		return hh*60 + mm, true
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}

func optionalString(value any) string {
	if value == nil {
		return ""
	}

	return strings.TrimSpace(fmt.Sprint(value))
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	return false
}
