package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var clock = clockwork.NewRealClock()

// SetClock replaces the clock behind Report.BuiltAt. nil restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Canonical field names.
const (
	FieldTimestamp   = "timestamp"
	FieldAuthor      = "author"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCoordinates = "coordinates"
	FieldAge         = "age"
	FieldAvatar      = "avatar"
	FieldHashtag     = "hashtag"
	FieldGenre       = "genre"
	FieldYear        = "year"
)

// headerAliases maps folded column labels onto canonical field names.
// Keys are in the form produced by foldHeader.
var headerAliases = map[string]string{
	"timestamp": FieldTimestamp,
	"タイムスタンプ":   FieldTimestamp,

	"author":   FieldAuthor,
	"name":     FieldAuthor,
	"nickname": FieldAuthor,
	"名前":       FieldAuthor,
	"お名前":      FieldAuthor,
	"ニックネーム":   FieldAuthor,

	"title": FieldTitle,
	"タイトル":  FieldTitle,
	"題名":    FieldTitle,

	"description": FieldDescription,
	"memory":      FieldDescription,
	"説明":          FieldDescription,
	"思い出":         FieldDescription,
	"内容":          FieldDescription,

	"coordinates": FieldCoordinates,
	"coords":      FieldCoordinates,
	"location":    FieldCoordinates,
	"latlon":      FieldCoordinates,
	"座標":          FieldCoordinates,
	"位置":          FieldCoordinates,
	"緯度経度":        FieldCoordinates,

	"age": FieldAge,
	"年齢":  FieldAge,
	"年代":  FieldAge,

	"avatar":     FieldAvatar,
	"avatarname": FieldAvatar,
	"アバター":       FieldAvatar,

	"hashtag":  FieldHashtag,
	"hashtags": FieldHashtag,
	"ハッシュタグ":   FieldHashtag,

	"genre": FieldGenre,
	"ジャンル":  FieldGenre,

	"year": FieldYear,
	"年":    FieldYear,
	"西暦":   FieldYear,
}

var (
	// ErrCoordinateCount is returned when a coordinate string does not hold exactly two parts.
	ErrCoordinateCount = errors.New("coordinates must be two comma-separated numbers")

	// ErrCoordinateValue is returned when a coordinate part is not a finite number.
	ErrCoordinateValue = errors.New("coordinate is not a finite number")
)

// foldHeader reduces a column label to its lookup key: NFKC, case-folded,
// with spaces, underscores and hyphens removed.
func foldHeader(label string) string {
	s := cases.Fold().String(norm.NFKC.String(label))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, s)
}

// CanonicalField returns the canonical field name for a column label.
func CanonicalField(label string) (string, bool) {
	f, ok := headerAliases[foldHeader(label)]
	return f, ok
}

// NormalizeCoordinates folds full-width characters and strips surrounding
// whitespace, brackets and parentheses from a "lat,lon" cell.
func NormalizeCoordinates(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	s = strings.TrimLeft(s, "[( \t")
	s = strings.TrimRight(s, "]) \t")
	return strings.TrimSpace(s)
}

// ParseCoordinates parses a normalized "lat,lon" string.
func ParseCoordinates(s string) (LatLon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLon{}, fmt.Errorf("%w: %q", ErrCoordinateCount, s)
	}
	var vals [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return LatLon{}, fmt.Errorf("%w: %q", ErrCoordinateValue, p)
		}
		vals[i] = v
	}
	return LatLon{Lat: vals[0], Lon: vals[1]}, nil
}

// columnIndex maps canonical field names to header positions. The first
// column carrying a field wins.
type columnIndex map[string]int

func indexHeader(header RawRow) columnIndex {
	idx := make(columnIndex, len(header))
	for i, label := range header {
		field, ok := CanonicalField(label)
		if !ok {
			continue
		}
		if _, seen := idx[field]; !seen {
			idx[field] = i
		}
	}
	return idx
}

func (c columnIndex) cell(row RawRow, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// BuildRecords zips each data row with the header and admits the rows that
// carry valid coordinates and an avatar name. rows[0] is the header.
func BuildRecords(rows []RawRow, avatars AvatarPath) ([]Record, Report) {
	report := Report{BuiltAt: clock.Now()}
	if len(rows) == 0 {
		return []Record{}, report
	}

	cols := indexHeader(rows[0])
	records := make([]Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		id := i + 1
		report.DataRows++

		rec, rej, ok := buildRecord(id, row, cols, avatars)
		if !ok {
			report.Rejections = append(report.Rejections, rej)
			continue
		}
		records = append(records, rec)
	}

	report.Admitted = len(records)
	return records, report
}

func buildRecord(id int, row RawRow, cols columnIndex, avatars AvatarPath) (Record, Rejection, bool) {
	rawCoords := cols.cell(row, FieldCoordinates)
	coords := NormalizeCoordinates(rawCoords)
	pos, err := ParseCoordinates(coords)
	if err != nil {
		return Record{}, Rejection{ID: id, Reason: ReasonCoordinates, Detail: err.Error()}, false
	}

	avatar := cols.cell(row, FieldAvatar)
	if avatar == "" {
		return Record{}, Rejection{ID: id, Reason: ReasonAvatar}, false
	}

	return Record{
		ID:          id,
		Timestamp:   cols.cell(row, FieldTimestamp),
		Author:      cols.cell(row, FieldAuthor),
		Title:       cols.cell(row, FieldTitle),
		Description: cols.cell(row, FieldDescription),
		Age:         cols.cell(row, FieldAge),
		AvatarName:  avatar,
		HashtagText: cols.cell(row, FieldHashtag),
		GenreText:   cols.cell(row, FieldGenre),
		Year:        cols.cell(row, FieldYear),
		Coordinates: coords,
		Position:    pos,
		AvatarURL:   avatars.URL(avatar),
	}, Rejection{}, true
}

// Placeable reports whether a record can be drawn as a map marker: its
// coordinates normalize to a valid pair and its avatar image path resolves.
func Placeable(r Record) (LatLon, bool) {
	coords := NormalizeCoordinates(r.Coordinates)
	if coords == "" || r.AvatarURL == "" {
		return LatLon{}, false
	}
	pos, err := ParseCoordinates(coords)
	if err != nil {
		return LatLon{}, false
	}
	return pos, true
}

// Listable reports whether a record carries the fields the sidebar and card
// scroller need.
func Listable(r Record) bool {
	return r.ID > 0 && r.Author != "" && r.AvatarURL != ""
}

// Hashtags splits the raw hashtag text on whitespace.
func (r Record) Hashtags() []string {
	return strings.Fields(r.HashtagText)
}

// GenreWord is the first word of the genre text, used as the popup genre tag.
func (r Record) GenreWord() string {
	f := strings.Fields(r.GenreText)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
