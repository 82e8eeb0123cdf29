// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// RenderMarkdown renders the digest as markdown.
func RenderMarkdown(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("# " + Subject + "\n\n")
	b.WriteString("### Report Summary:\n\n")
	fmt.Fprintf(&b, "**For**: %s\n\n", in.UserName)
	for i, r := range in.Results {
		fmt.Fprintf(&b, "**Query %d**: %s\n\n", i+1, r.Query)
		fmt.Fprintf(&b, "**Categories**: %s\n\n", strings.Join(r.Categories, ", "))
		fmt.Fprintf(&b, "**Total Papers Analyzed**: %d\n\n", r.TotalPapers)
		fmt.Fprintf(&b, "**Accepted Papers**: %d\n\n", r.AcceptedPapers)
	}
	b.WriteString("---\n\n")

	for _, r := range in.Results {
		fmt.Fprintf(&b, "## Top %d papers for the topic: %s\n\n", len(r.Summaries), r.Query)
		for _, s := range r.Summaries {
			p := s.Score.Paper
			fmt.Fprintf(&b, "### [%s](%s)\n", p.Title, p.PDFLink)
			fmt.Fprintf(&b, "arXiv ID: `%s`\n", p.ID)
			fmt.Fprintf(&b, "Score: %.2f/10\n\n", s.Score.AvgScore)

			if in.SummaryType.IncludesShort() {
				fmt.Fprintf(&b, "***Brief Summary***: \n %s\n\n", s.Score.Round1.Summary)
				fmt.Fprintf(&b, "***Strengths***: \n %s\n\n", s.Score.Round1.Strengths)
				fmt.Fprintf(&b, "***Weaknesses***: \n %s\n\n", s.Score.Round1.Weaknesses)
			}
			if in.SummaryType.IncludesDetailed() {
				for _, sec := range types.SectionOrder {
					b.WriteString(AdjustHeadings(s.Sections[sec]))
					b.WriteString("\n\n")
				}
			}
			b.WriteString("---\n\n")
		}
	}
	return b.String(), nil
}

// AdjustHeadings demotes headings in model-written sections so they nest
// under the paper heading: ## becomes ####, ### becomes underlined bold
// text, and #### becomes bold text.
func AdjustHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "#### "):
			h := line[5:]
			if !isBold(h) {
				h = "**" + h + "**"
			}
			lines[i] = h
		case strings.HasPrefix(line, "### "):
			h := line[4:]
			if isBold(h) {
				h = h[2 : len(h)-2]
			}
			lines[i] = "<u><b>" + h + "</b></u>"
		case strings.HasPrefix(line, "## "):
			lines[i] = "#### " + line[3:]
		}
	}
	return strings.Join(lines, "\n")
}

func isBold(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**")
}
