package contrib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleMarkdown = "# Results\n\nThe model **converged**.\n\n## Details\n\n" +
	"See [the docs](https://example.com/docs).\n\n```\nfit(model)\n```\n\n" +
	"- first\n- second\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

func TestExtractHeadings(t *testing.T) {
	headings := extractHeadings(sampleMarkdown)
	assert.Equal(t, []Heading{
		{Level: 1, Text: "Results"},
		{Level: 2, Text: "Details"},
	}, headings)
}

func TestExtractLinks(t *testing.T) {
	links := extractLinks(sampleMarkdown)
	assert.Equal(t, []Link{{Text: "the docs", Href: "https://example.com/docs"}}, links)
}

func TestBuildSections(t *testing.T) {
	sections := buildSections(sampleMarkdown, extractHeadings(sampleMarkdown))
	assert.Len(t, sections, 2)
	assert.Equal(t, "Results", sections[0].Heading)
	assert.Contains(t, sections[0].Text, "converged")
	assert.Equal(t, "Details", sections[1].Heading)
}

func TestStructureCounts(t *testing.T) {
	assert.Equal(t, 1, countCodeBlocks(sampleMarkdown))
	assert.Equal(t, 1, countTables(sampleMarkdown))
	assert.Equal(t, 2, countLists(sampleMarkdown))
}

func TestStripMarkdown(t *testing.T) {
	text := stripMarkdown("# Title\n\nSome **bold** and `code` and [a link](https://x).")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "`")
	assert.Contains(t, text, "Some bold and code and a link.")
}

func TestCleanInline(t *testing.T) {
	assert.Equal(t, "bold and code", cleanInline("**bold** and `code`"))
	assert.Equal(t, "a link", cleanInline("[a link](https://example.com)"))
}
