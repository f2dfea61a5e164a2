// Package frontmatter reads and writes the markdown export of a link
// collection: a YAML header followed by one section per category.
package frontmatter

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Uncategorized is the section heading used for links without a category.
const Uncategorized = "Uncategorized"

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?(.*)`)
	entryPattern       = regexp.MustCompile(`^- \[((?:\\.|[^\]\\])*)\]\(([^)\s]+)\)((?:\s+#\S+)*)\s*$`)
)

// Frontmatter is the YAML header of an export document.
type Frontmatter struct {
	Title      string   `yaml:"title"`
	Exported   string   `yaml:"exported"`
	Links      int      `yaml:"links"`
	Categories int      `yaml:"categories"`
	Tags       []string `yaml:"tags,flow,omitempty"`
}

// Entry is one exported link.
type Entry struct {
	Title string
	URL   string
	Tags  []string
	Notes string
}

// Section groups the entries of one category.
type Section struct {
	Category string
	Entries  []Entry
}

// Document is a parsed export.
type Document struct {
	Frontmatter Frontmatter
	Sections    []Section
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	return &fm, matches[2], nil
}

// Build creates the YAML frontmatter string from a Frontmatter struct
func Build(fm *Frontmatter) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", quoteIfNeeded(fm.Title)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", fm.Exported))
	sb.WriteString(fmt.Sprintf("links: %d\n", fm.Links))
	sb.WriteString(fmt.Sprintf("categories: %d\n", fm.Categories))
	if len(fm.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("tags: %s\n", formatYAMLArray(fm.Tags)))
	}
	sb.WriteString("---")
	return sb.String()
}

// BuildContent combines frontmatter and body content into a complete document
func BuildContent(fm *Frontmatter, bodyContent string) string {
	frontmatterStr := Build(fm)
	if !strings.HasPrefix(bodyContent, "\n") {
		return frontmatterStr + "\n\n" + bodyContent
	}
	return frontmatterStr + "\n" + bodyContent
}

// BuildDocument renders doc. Counts in the header are taken from the sections.
func BuildDocument(doc *Document) string {
	fm := doc.Frontmatter
	fm.Links = 0
	fm.Categories = 0

	var body strings.Builder
	for _, sec := range doc.Sections {
		if sec.Category != Uncategorized {
			fm.Categories++
		}
		body.WriteString("## " + sec.Category + "\n\n")
		for _, e := range sec.Entries {
			fm.Links++
			body.WriteString(formatEntry(e))
		}
		body.WriteString("\n")
	}
	return BuildContent(&fm, body.String())
}

// ParseDocument reads a document written by BuildDocument. Lines that are not
// headings, entries or entry notes are ignored. Entries before the first
// heading land in the Uncategorized section.
func ParseDocument(content string) (*Document, error) {
	fm, body, err := Parse(content)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if fm != nil {
		doc.Frontmatter = *fm
	}

	var cur *Section
	section := func(name string) *Section {
		for i := range doc.Sections {
			if doc.Sections[i].Category == name {
				return &doc.Sections[i]
			}
		}
		doc.Sections = append(doc.Sections, Section{Category: name})
		return &doc.Sections[len(doc.Sections)-1]
	}

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t")
		switch {
		case strings.HasPrefix(line, "## "):
			cur = section(strings.TrimSpace(line[3:]))
		case strings.HasPrefix(line, "- "):
			m := entryPattern.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: malformed entry %q", lineNo, line)
			}
			if cur == nil {
				cur = section(Uncategorized)
			}
			cur.Entries = append(cur.Entries, Entry{
				Title: unescapeTitle(m[1]),
				URL:   m[2],
				Tags:  parseTags(m[3]),
			})
		case strings.HasPrefix(line, "  > ") && cur != nil && len(cur.Entries) > 0:
			e := &cur.Entries[len(cur.Entries)-1]
			note := strings.TrimPrefix(line, "  > ")
			if e.Notes == "" {
				e.Notes = note
			} else {
				e.Notes += "\n" + note
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return doc, nil
}

// FormatTimestamp formats a time.Time into the standard frontmatter timestamp format
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ParseTimestamp parses a frontmatter timestamp string into time.Time
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

// MergeTags combines multiple tag sources and removes duplicates, ignoring case.
func MergeTags(sources ...[]string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, tags := range sources {
		for _, tag := range tags {
			tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
			key := strings.ToLower(tag)
			if tag != "" && !seen[key] {
				seen[key] = true
				result = append(result, tag)
			}
		}
	}
	return result
}

func formatEntry(e Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- [%s](%s)", escapeTitle(e.Title), e.URL))
	for _, tag := range e.Tags {
		sb.WriteString(" #" + strings.Join(strings.Fields(tag), "-"))
	}
	sb.WriteString("\n")
	if e.Notes != "" {
		for _, line := range strings.Split(e.Notes, "\n") {
			sb.WriteString("  > " + line + "\n")
		}
	}
	return sb.String()
}

func parseTags(s string) []string {
	tags := []string{}
	for _, f := range strings.Fields(s) {
		tags = append(tags, strings.TrimPrefix(f, "#"))
	}
	return tags
}

func escapeTitle(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

func unescapeTitle(s string) string {
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// formatYAMLArray formats a string slice as a YAML flow-style array
func formatYAMLArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quoteIfNeeded(item)
	}
	return fmt.Sprintf("[%s]", strings.Join(quoted, ", "))
}

func quoteIfNeeded(s string) string {
	if needsQuoting(s) {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// needsQuoting checks if a string needs to be quoted in YAML
func needsQuoting(s string) bool {
	return s == "" || strings.ContainsAny(s, ",:[]{}\"'#&*!|>%@`") ||
		strings.TrimSpace(s) != s
}
