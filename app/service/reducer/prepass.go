package reducer

import (
	"strconv"
	"strings"
)

const maxGroupSize = 300

var numberUnits = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "dozen": 12,
}

var numberTens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// Words that make "7 of us" or "about ten people" still read as a bare
// group-size answer.
var groupSizeFiller = map[string]bool{
	"people": true, "ppl": true, "persons": true, "folks": true,
	"guys": true, "dudes": true, "of": true, "us": true, "a": true,
	"about": true, "around": true, "roughly": true, "maybe": true,
	"probably": true, "like": true, "total": true, "in": true,
	"the": true, "group": true,
}

// ParseGroupSize deterministically reads a terse group-size reply: a bare
// integer or a spelled-out number up to 300, with optional filler words.
// It exists so a model hiccup can never lose an answer like "7".
func ParseGroupSize(utterance string) (int, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '!', '?', '-':
			return ' '
		default:
			return r
		}
	}, strings.ToLower(utterance))

	var numberTokens []string
	for _, token := range strings.Fields(cleaned) {
		if groupSizeFiller[token] {
			continue
		}
		numberTokens = append(numberTokens, token)
	}

	if len(numberTokens) == 0 {
		return 0, false
	}

	if n, ok := parseNumberTokens(numberTokens); ok && n >= 1 && n <= maxGroupSize {
		return n, true
	}

	return 0, false
}

func parseNumberTokens(tokens []string) (int, bool) {
	if len(tokens) == 1 {
		if n, err := strconv.Atoi(tokens[0]); err == nil {
			return n, true
		}
	}

	// Spelled-out: "seven", "twenty", "twenty five", "one hundred".
	total := 0
	i := 0

	if len(tokens) >= 2 && tokens[1] == "hundred" {
		units, ok := numberUnits[tokens[0]]
		if !ok {
			return 0, false
		}
		total = units * 100
		i = 2
	}

	if i < len(tokens) {
		if tens, ok := numberTens[tokens[i]]; ok {
			total += tens
			i++
			if i < len(tokens) {
				units, ok := numberUnits[tokens[i]]
				if !ok {
					return 0, false
				}
				total += units
				i++
			}
		} else if units, ok := numberUnits[tokens[i]]; ok {
			total += units
			i++
		} else {
			return 0, false
		}
	}

	if i != len(tokens) || total == 0 {
		return 0, false
	}

	return total, true
}
