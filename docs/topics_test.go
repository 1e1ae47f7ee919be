package docs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/rsu"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced code blocks with these info strings are decoded by the matching codec.
const (
	jsonOperations = "json operations"
	jsonPosition   = "json position"
	jsonRates      = "json rates"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("Topic(%q) failed: %v", topic, err)
		}
	}

	all, err := Topics()
	if err != nil {
		t.Fatalf("Topics() failed: %v", err)
	}
	for _, topic := range all {
		found := false
		for _, l := range listed {
			found = found || l == topic
		}
		if !found {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}

	if _, err := Topic("unknown"); err == nil {
		t.Error("Topic(unknown): want error")
	}
	every, err := Topic("*")
	if err != nil {
		t.Fatalf("Topic(*) failed: %v", err)
	}
	if !strings.Contains(every, "# Exchange rates") || strings.Contains(every, "# rsu user manual") {
		t.Errorf("Topic(*) does not hold every topic but the index")
	}
}

// Block is a fenced code block of a markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, file := range files {
		for _, block := range parseMarkdown(t, file) {
			count++
			r := strings.NewReader(block.Content)
			switch block.Type {
			case jsonOperations:
				_, err = rsu.DecodeOperations(r)
			case jsonPosition:
				_, err = rsu.DecodePosition(r)
			case jsonRates:
				_, err = rsu.DecodeRates(r)
			}
			if err != nil {
				t.Errorf("%s:%d: invalid %s: %v", block.File, block.Line, block.Type, err)
			}
		}
	}
	if count != 3 {
		t.Errorf("found %d code blocks, want 3", count)
	}
}

// parseMarkdown returns the code blocks of file that can be decoded.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Info.Segment.Value(content))
		switch lang {
		case jsonOperations, jsonPosition, jsonRates:
			var b strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				b.Write(line.Value(content))
			}
			blocks = append(blocks, &Block{
				Type:    lang,
				Content: b.String(),
				File:    file,
				Line:    lineNumber(content, fcb.Info.Segment.Start),
			})
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber returns the line of offset in source.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
