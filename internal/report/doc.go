// Package report renders check results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the column-aligned plain text report
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with a table, an alert and a
//     mermaid pie chart
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter. Labels are taken from an
// i18n.Localizer; when none is given the English one is used.
package report
