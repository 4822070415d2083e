package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// appendBounded appends r unless the result would be wider than limit.
// A rejected keystroke leaves s unchanged.
func appendBounded(s string, r rune, limit int) (string, bool) {
	if runewidth.StringWidth(s)+runewidth.RuneWidth(r) > limit {
		return s, false
	}
	return s + string(r), true
}

func dropLast(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// column is the display width of the line the cursor is on.
func column(s string) int {
	return runewidth.StringWidth(lastLine(s))
}

// typeBody appends r to a description, breaking the line once it reaches
// limit. It returns the new text and cursor row.
func typeBody(s string, row int, r rune, limit int) (string, int) {
	if col := column(s); col > 0 && col+runewidth.RuneWidth(r) > limit {
		s += "\n"
		row++
	}
	s += string(r)
	if column(s) >= limit {
		s += "\n"
		row++
	}
	return s, row
}

func breakLine(s string, row int) (string, int) {
	return s + "\n", row + 1
}

// eraseBody removes the last character. At column 0 the line break is
// removed instead, joining the cursor line with the previous one.
func eraseBody(s string, row int) (string, int) {
	if s == "" {
		return s, 0
	}
	if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1], max(row-1, 0)
	}
	return dropLast(s), row
}
