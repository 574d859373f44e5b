package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file but
	// readme.md is listed.
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	require.NoError(t, scanner.Err())

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			_, err := GetTopic(topic)
			assert.NoError(t, err)
		})
	}

	all, err := GetAllTopics()
	require.NoError(t, err)
	assert.ElementsMatch(t, topicsInReadme, all)
}

func TestTopics_Headings(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := os.ReadFile(file)
			require.NoError(t, err)

			root := goldmark.DefaultParser().Parse(text.NewReader(content))
			titles := 0
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
					titles++
				}
				return ast.WalkContinue, nil
			})
			// Topics are concatenated, each one is a section of its own.
			assert.Equal(t, 1, titles, "want exactly one title in %s", file)
		})
	}
}

func TestGetTopics(t *testing.T) {
	doc, err := GetTopics("portfolio", "series")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "# Portfolio\n"))
	assert.Contains(t, doc, "# Series\n")

	star, err := GetTopic("*")
	require.NoError(t, err)
	assert.NotContains(t, star, "# sdash")
	assert.Contains(t, star, "# Dashboard")

	_, err = GetTopic("ledger")
	assert.ErrorContains(t, err, `topic "ledger" not found`)
}
