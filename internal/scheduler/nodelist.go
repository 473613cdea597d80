package scheduler

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// nodeListRe matches one compressed group such as udc-an38-[1,9,13-17].
// Group 1 is the prefix, group 2 the comma-separated component list.
var nodeListRe = regexp.MustCompile(`([a-zA-Z\-\d]+)\[(\d+(?:-\d+)?(?:,\d+(?:-\d+)?)*)\]`)

// ExpandNodeList expands a Slurm node-list token into individual node names.
//
//	udc-an38-[1,9,13]  -> udc-an38-1 udc-an38-9 udc-an38-13
//	udc-an38-[1-3]     -> udc-an38-1 udc-an38-2 udc-an38-3
//	plain-node-07      -> plain-node-07
//
// Every bracket group in the token is expanded. A single number keeps its
// original spelling while range members are printed without padding. A range
// whose start exceeds its end yields nothing. Bracket contents that are not
// numbers or ranges make that group unmatched; the token is passed through
// unchanged only when no group matched at all.
func ExpandNodeList(token string) []string {
	matches := nodeListRe.FindAllStringSubmatch(token, -1)
	if len(matches) == 0 {
		return []string{token}
	}

	var nodes []string
	for _, m := range matches {
		prefix, ids := m[1], m[2]
		for _, part := range strings.Split(ids, ",") {
			startStr, endStr, isRange := strings.Cut(part, "-")
			if !isRange {
				nodes = append(nodes, prefix+part)
				continue
			}
			start, err1 := strconv.Atoi(startStr)
			end, err2 := strconv.Atoi(endStr)
			if err1 != nil || err2 != nil {
				continue
			}
			for i := start; i <= end; i++ {
				nodes = append(nodes, prefix+strconv.Itoa(i))
			}
		}
	}
	return nodes
}

// SortNodeNames sorts names so that digit runs compare by value
// (gpu-2 before gpu-10).
func SortNodeNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return nodeNameLess(names[i], names[j])
	})
}

// nodeNameLess compares two names chunk by chunk, numerically for digit runs.
func nodeNameLess(a, b string) bool {
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)
		if ca != cb {
			na, errA := strconv.Atoi(ca)
			nb, errB := strconv.Atoi(cb)
			if errA == nil && errB == nil && na != nb {
				return na < nb
			}
			return ca < cb
		}
		a, b = restA, restB
	}
	return len(a) < len(b)
}

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (string, string) {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}
