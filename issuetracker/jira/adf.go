package jira

import (
	"fmt"
	"strings"
)

// adfNode is a node of an Atlassian Document Format tree.
type adfNode struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []adfNode              `json:"content,omitempty"`
}

// flattenADF renders an ADF document as plain text. Block nodes are
// separated by blank lines and list items are rendered as markdown bullets,
// so headings and lists survive for acceptance criteria parsing.
func flattenADF(doc adfNode) string {
	var sb strings.Builder
	renderBlocks(&sb, doc.Content, "")
	return strings.TrimSpace(sb.String())
}

func renderBlocks(sb *strings.Builder, nodes []adfNode, indent string) {
	for _, n := range nodes {
		switch n.Type {
		case "paragraph", "heading", "blockquote", "panel":
			if n.Type == "heading" {
				level := 2
				if l, ok := n.Attrs["level"].(float64); ok && l >= 1 && l <= 6 {
					level = int(l)
				}
				sb.WriteString(strings.Repeat("#", level) + " ")
			}
			if n.Type == "blockquote" || n.Type == "panel" {
				renderBlocks(sb, n.Content, indent)
				continue
			}
			sb.WriteString(inlineText(n.Content))
			sb.WriteString("\n\n")
		case "bulletList", "orderedList":
			for i, item := range n.Content {
				marker := "- "
				if n.Type == "orderedList" {
					marker = fmt.Sprintf("%d. ", i+1)
				}
				renderListItem(sb, item, indent, marker)
			}
			sb.WriteString("\n")
		case "codeBlock":
			sb.WriteString(inlineText(n.Content))
			sb.WriteString("\n\n")
		case "rule":
			sb.WriteString("---\n\n")
		case "text":
			sb.WriteString(n.Text)
		default:
			renderBlocks(sb, n.Content, indent)
		}
	}
}

func renderListItem(sb *strings.Builder, item adfNode, indent, marker string) {
	first := true
	for _, child := range item.Content {
		switch child.Type {
		case "bulletList", "orderedList":
			var nested strings.Builder
			renderBlocks(&nested, []adfNode{child}, indent+"  ")
			sb.WriteString(strings.TrimRight(nested.String(), "\n"))
			sb.WriteString("\n")
		default:
			text := inlineText(child.Content)
			if child.Type == "text" {
				text = child.Text
			}
			if first {
				sb.WriteString(indent + marker + text + "\n")
				first = false
			} else {
				sb.WriteString(indent + "  " + text + "\n")
			}
		}
	}
}

func inlineText(nodes []adfNode) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case "text":
			sb.WriteString(n.Text)
		case "hardBreak":
			sb.WriteString("\n")
		case "mention", "emoji", "status", "date":
			if t, ok := n.Attrs["text"].(string); ok {
				sb.WriteString(t)
			}
		case "inlineCard":
			if u, ok := n.Attrs["url"].(string); ok {
				sb.WriteString(u)
			}
		default:
			sb.WriteString(inlineText(n.Content))
		}
	}
	return sb.String()
}
