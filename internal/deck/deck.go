// Package deck reads plain-text deck files for bulk vocabulary import.
// A deck is a sequence of entries:
//
//	F: envisager
//	B: to consider
//	---
//	F: mettre en place
//	B: to set up
//
// A line starting a new front always starts a new entry; "---" ends the
// current one explicitly. Back text may continue over several lines.
package deck

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/example/daylex/internal/srs"
)

const (
	frontPrefix = "F:"
	backPrefix  = "B:"
	separator   = "---"
)

type state int

const (
	seeking state = iota
	readingFront
	readingBack
)

// ParseFile reads a deck file from the given path.
func ParseFile(path string) ([]srs.NewCard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads entries from an io.Reader. Entries missing a front are
// dropped; entries missing a back are kept and left to the importer's
// blank-entry handling, so the caller gets one consistent skip count.
func Parse(r io.Reader) ([]srs.NewCard, error) {
	scanner := bufio.NewScanner(r)
	var entries []srs.NewCard
	var current srs.NewCard
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		}
		block = nil
	}

	finishEntry := func() {
		flushBlock()
		if current.Front != "" {
			entries = append(entries, current)
		}
		current = srs.NewCard{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			finishEntry()
		case strings.HasPrefix(line, frontPrefix):
			if currentState != seeking {
				finishEntry()
			}
			currentState = readingFront
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, frontPrefix), " "))
		case strings.HasPrefix(line, backPrefix):
			flushBlock()
			currentState = readingBack
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, backPrefix), " "))
		case currentState != seeking:
			block = append(block, line)
		}
	}

	finishEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
