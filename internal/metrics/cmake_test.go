package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestAnalyzeSkipsTinyFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"only blank lines", "\n\n   \n\t\n"},
		{"exactly five non-empty lines", join(
			"project(Tiny)",
			"set(A 1)",
			"set(B 2)",
			"",
			"set(C 3)",
			"set(D 4)",
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Analyze("x.cmake", "x.cmake", tt.content)
			assert.Nil(t, m, "files with <=5 non-empty lines must be excluded")
		})
	}
}

func TestAnalyzeKeepsSixNonEmptyLines(t *testing.T) {
	content := join(
		"project(Small)",
		"set(A 1)",
		"set(B 2)",
		"set(C 3)",
		"set(D 4)",
		"set(E 5)",
	)
	m := Analyze("x.cmake", "x.cmake", content)
	require.NotNil(t, m)
	assert.Equal(t, 6, m.NonEmptyLines)
}

func TestScoreWeights(t *testing.T) {
	tests := []struct {
		name string
		m    FileMetrics
		want int
	}{
		{"mixed counts", FileMetrics{Commands: 3, Functions: 1, IfBlocks: 2}, 7},
		{"macros weigh double", FileMetrics{Commands: 1, Macros: 2}, 5},
		{"loops weigh one", FileMetrics{ForeachLoops: 3, WhileLoops: 2}, 5},
		{"comments do not score", FileMetrics{Comments: 100}, 0},
		{"empty", FileMetrics{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&tt.m))
		})
	}
}

func TestAnalyzeCountsPlainCommands(t *testing.T) {
	content := join(
		"# configure the demo project",
		"cmake_minimum_required(VERSION 3.16)",
		"project(Demo)",
		"",
		"set(SRCS main.c)",
		"add_executable(demo ${SRCS})",
		"",
		"if(WIN32)",
		"  target_compile_definitions(demo PRIVATE NOMINMAX)",
		"endif()",
		"",
		"foreach(src IN LISTS SRCS)",
		"  message(STATUS \"${src}\")",
		"endforeach()",
	)

	m := Analyze("/tmp/Demo/CMakeLists.txt", "Demo/CMakeLists.txt", content)
	require.NotNil(t, m)

	assert.Equal(t, 14, m.Lines)
	assert.Equal(t, 11, m.NonEmptyLines)
	assert.Equal(t, 10, m.Commands)
	assert.Equal(t, 1, m.Comments)
	assert.Equal(t, 0, m.Functions)
	assert.Equal(t, 0, m.Macros)
	// endif() matches the if pattern, endforeach() the foreach pattern.
	// Known over-count, kept for reproducibility.
	assert.Equal(t, 2, m.IfBlocks)
	assert.Equal(t, 2, m.ForeachLoops)
	assert.Equal(t, 0, m.WhileLoops)
	assert.Equal(t, 14, m.Complexity)
}

func TestAnalyzeCountsDefinitionsAndLoops(t *testing.T) {
	content := join(
		"function(add_demo_test name)",
		"  add_test(NAME ${name} COMMAND ${name})",
		"endfunction()",
		"",
		"macro(demo_setup)",
		"  enable_testing()",
		"endmacro()",
		"",
		"while(result)",
		"  math(EXPR result \"${result} - 1\")",
		"endwhile()",
	)

	m := Analyze("helpers.cmake", "helpers.cmake", content)
	require.NotNil(t, m)

	assert.Equal(t, 9, m.Commands)
	assert.Equal(t, 2, m.Functions)
	assert.Equal(t, 2, m.Macros)
	assert.Equal(t, 0, m.IfBlocks)
	assert.Equal(t, 2, m.WhileLoops)
	// 9 commands + 2 functions*2 + 2 macros*2 + 2 while loops
	assert.Equal(t, 19, m.Complexity)
}

func TestAnalyzeCountsMultilineCommands(t *testing.T) {
	content := join(
		"project(Multi)",
		"set(",
		"  SOURCES",
		"  a.c",
		")",
		"add_library(multi ${SOURCES})",
		"install(TARGETS multi)",
	)

	m := Analyze("CMakeLists.txt", "CMakeLists.txt", content)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.MultilineCmds)
	// Multiline commands are recorded but do not feed the score.
	assert.Equal(t, m.Commands+m.IfBlocks, m.Complexity)
}
