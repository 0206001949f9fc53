package app

import (
	"regexp"
	"strings"
)

// Wildcard is the LIKE token for "any run of characters".
const Wildcard = "%"

// Strategy turns the raw query text into one LIKE pattern.
type Strategy struct {
	Name    string
	Pattern func(text string) string
}

// FuzzyCascade is tried in order after an empty exact pass; the first
// strategy whose pattern matches anything wins.
var FuzzyCascade = []Strategy{
	{Name: "cleansed", Pattern: cleansedPattern},
	{Name: "wildcard-wrapped", Pattern: wrappedPattern},
	{Name: "whitespace-as-wildcard", Pattern: spacedPattern},
	{Name: "hotel-word-stripped", Pattern: noHotelPattern},
	{Name: "word-order-reversed", Pattern: reversedPattern},
}

var (
	punctRun  = regexp.MustCompile(`[,_\-]+`)
	spaceRun  = regexp.MustCompile(`\s+`)
	hotelWord = regexp.MustCompile(`(?i)hotel`)
	wildRun   = regexp.MustCompile(`%+`)
)

func cleanse(s string) string { return punctRun.ReplaceAllString(s, "") }
func spaceToWild(s string) string { return spaceRun.ReplaceAllString(cleanse(s), Wildcard) }
func stripHotel(s string) string { return hotelWord.ReplaceAllString(spaceToWild(s), "") }
func wrap(s string) string { return Wildcard + s + Wildcard }
func collapseWild(s string) string { return wildRun.ReplaceAllString(s, Wildcard) }
func exactPattern(s string) string { return wrap(s) }
func cleansedPattern(s string) string { return cleanse(s) }
func wrappedPattern(s string) string { return wrap(cleanse(s)) }
func spacedPattern(s string) string { return wrap(spaceToWild(s)) }
func noHotelPattern(s string) string { return collapseWild(wrap(stripHotel(s))) }

// constrains reports whether pattern has any literal text. A pattern of only
// wildcards and blanks would match every stored hotel.
func constrains(pattern string) bool {
	return strings.TrimSpace(strings.ReplaceAll(pattern, Wildcard, "")) != ""
}

func reversedPattern(s string) string {
	words := strings.Split(stripHotel(s), Wildcard)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return collapseWild(wrap(strings.Join(words, Wildcard)))
}
