package csv

import (
	"bufio"
	"io"

	"hermannm.dev/wrap"
)

// Space is left out, since client and country names commonly contain it.
var DefaultDelimitersToCheck = []rune{',', ';', '\t', '|'}

// DeduceFieldDelimiter picks the candidate that occurs most consistently across the first rows
// of the file, ignoring occurrences inside quoted fields. The file is rewound before returning.
func DeduceFieldDelimiter(
	csvFile io.ReadSeeker,
	maxRowsToCheck int,
	delimitersToCheck []rune,
) (delimiter rune, err error) {
	defer func() {
		if _, seekErr := csvFile.Seek(0, io.SeekStart); seekErr != nil {
			err = wrap.Error(seekErr, "failed to reset CSV reader after deducing field delimiter")
		}
	}()

	if len(delimitersToCheck) == 0 {
		delimitersToCheck = DefaultDelimitersToCheck
	}

	candidates := newDelimiterCandidateList(delimitersToCheck)

	scanner := bufio.NewScanner(csvFile)
	for i := 0; i < maxRowsToCheck && scanner.Scan(); i++ {
		line := scanner.Text()

		for i := range candidates {
			candidates[i].updateCounts(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, wrap.Error(err, "failed to scan CSV file")
	}

	return candidates.getBestCandidate(delimitersToCheck[0]), nil
}

type delimiterCandidate struct {
	delimiter    rune
	highestCount int
	lowestCount  int
}

func (candidate *delimiterCandidate) updateCounts(line string) {
	count := 0
	quoted := false
	for _, char := range line {
		switch {
		case char == '"':
			quoted = !quoted
		case char == candidate.delimiter && !quoted:
			count++
		}
	}

	if candidate.highestCount == -1 || candidate.highestCount < count {
		candidate.highestCount = count
	}
	if candidate.lowestCount == -1 || candidate.lowestCount > count {
		candidate.lowestCount = count
	}
}

type delimiterCandidateList []delimiterCandidate

func newDelimiterCandidateList(delimitersToCheck []rune) delimiterCandidateList {
	list := make([]delimiterCandidate, 0, len(delimitersToCheck))

	for _, delimiter := range delimitersToCheck {
		list = append(
			list,
			delimiterCandidate{delimiter: delimiter, highestCount: -1, lowestCount: -1},
		)
	}

	return list
}

// getBestCandidate prefers delimiters with the same count on every line, then higher counts.
// Falls back to the given delimiter if no candidate occurs at all.
func (list delimiterCandidateList) getBestCandidate(fallback rune) rune {
	best := delimiterCandidate{delimiter: fallback}

	for _, candidate := range list {
		if candidate.highestCount <= 0 {
			continue
		}

		consistent := candidate.highestCount == candidate.lowestCount
		bestConsistent := best.highestCount > 0 && best.highestCount == best.lowestCount

		switch {
		case consistent && !bestConsistent:
			best = candidate
		case consistent == bestConsistent && candidate.highestCount > best.highestCount:
			best = candidate
		}
	}

	return best.delimiter
}
