package metrics

import (
	"regexp"
	"strings"
)

// FileMetrics holds the textual feature counts for one CMake file.
// Counts come from pattern matching, not from parsing the CMake
// language, so constructs spanning lines or living inside comments and
// strings can be over- or under-counted. That approximation is accepted:
// the scores are only used to spread fixture picks across complexity
// tiers, not to measure anything precisely.
type FileMetrics struct {
	Path          string `json:"path" db:"path"`
	RelPath       string `json:"rel_path" db:"rel_path"`
	Lines         int    `json:"lines" db:"lines"`
	NonEmptyLines int    `json:"non_empty_lines" db:"non_empty_lines"`
	Commands      int    `json:"commands" db:"commands"`
	Comments      int    `json:"comments" db:"comments"`
	Functions     int    `json:"functions" db:"functions"`
	Macros        int    `json:"macros" db:"macros"`
	IfBlocks      int    `json:"if_blocks" db:"if_blocks"`
	ForeachLoops  int    `json:"foreach_loops" db:"foreach_loops"`
	WhileLoops    int    `json:"while_loops" db:"while_loops"`
	MultilineCmds int    `json:"multiline_commands" db:"multiline_commands"`
	Complexity    int    `json:"complexity" db:"complexity"`
}

// minNonEmptyLines is the exclusion threshold: files with this many
// non-empty lines or fewer carry too little signal to score.
const minNonEmptyLines = 5

var (
	commandRe   = regexp.MustCompile(`(?m)^\s*[a-zA-Z_][a-zA-Z0-9_]*\s*\(`)
	commentRe   = regexp.MustCompile(`#`)
	functionRe  = regexp.MustCompile(`(?i)function\s*\(`)
	macroRe     = regexp.MustCompile(`(?i)macro\s*\(`)
	ifRe        = regexp.MustCompile(`(?i)if\s*\(`)
	foreachRe   = regexp.MustCompile(`(?i)foreach\s*\(`)
	whileRe     = regexp.MustCompile(`(?i)while\s*\(`)
	multilineRe = regexp.MustCompile(`(?ms)\(\s*$.*?^\s*\)`)
)

// Analyze scores one file's content. It returns nil when the file has
// too few non-empty lines to be a useful fixture candidate.
func Analyze(path, relPath, content string) *FileMetrics {
	lines := strings.Split(content, "\n")

	nonEmpty := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}
	if nonEmpty <= minNonEmptyLines {
		return nil
	}

	m := &FileMetrics{
		Path:          path,
		RelPath:       relPath,
		Lines:         len(lines),
		NonEmptyLines: nonEmpty,
		Commands:      len(commandRe.FindAllStringIndex(content, -1)),
		Comments:      len(commentRe.FindAllStringIndex(content, -1)),
		Functions:     len(functionRe.FindAllStringIndex(content, -1)),
		Macros:        len(macroRe.FindAllStringIndex(content, -1)),
		IfBlocks:      len(ifRe.FindAllStringIndex(content, -1)),
		ForeachLoops:  len(foreachRe.FindAllStringIndex(content, -1)),
		WhileLoops:    len(whileRe.FindAllStringIndex(content, -1)),
		MultilineCmds: len(multilineRe.FindAllStringIndex(content, -1)),
	}
	m.Complexity = Score(m)
	return m
}

// Score computes the complexity score from the raw counts. Function and
// macro definitions weigh double; plain commands and control flow weigh
// one each.
func Score(m *FileMetrics) int {
	return m.Commands +
		m.Functions*2 +
		m.Macros*2 +
		m.IfBlocks +
		m.ForeachLoops +
		m.WhileLoops
}
