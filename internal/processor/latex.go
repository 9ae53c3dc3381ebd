package processor

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateError indicates a required structural field is absent from the
// resume data handed to GenerateLaTeXResume.
type TemplateError struct {
	Field string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("resume template: missing required field %q", e.Field)
}

// ResumeData is the structured field mapping the LaTeX generator expands.
type ResumeData struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Summary  string
	Sections []ResumeSection
}

// ResumeSection is one titled block of the resume.
type ResumeSection struct {
	Title   string
	Entries []ResumeEntry
}

// ResumeEntry is one item within a section.
type ResumeEntry struct {
	Heading    string
	Subheading string
	Date       string
	Bullets    []string
}

// escapeLaTeX neutralizes LaTeX special characters in user-supplied text.
// A single-pass Replacer keeps the replacement braces from being re-escaped.
var escapeLaTeX = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
).Replace

const resumeTemplateText = `\documentclass[11pt,a4paper]{article}
\usepackage[margin=2cm]{geometry}
\usepackage{enumitem}
\setlist[itemize]{noitemsep,topsep=2pt,leftmargin=1.2em}
\pagestyle{empty}
\begin{document}

\begin{center}
{\LARGE \textbf{ {{- esc .Name -}} }}\\[4pt]
{{- if .ContactLine}}
{{esc .ContactLine}}\\[2pt]
{{- end}}
\end{center}
{{- if .Summary}}

\section*{Summary}
{{esc .Summary}}
{{- end}}
{{- range .Sections}}

\section*{ {{- esc .Title -}} }
{{- range .Entries}}
{{- if .Heading}}

\textbf{ {{- esc .Heading -}} }{{if .Subheading}} --- {{esc .Subheading}}{{end}}{{if .Date}} \hfill {{esc .Date}}{{end}}
{{- end}}
{{- if .Bullets}}
\begin{itemize}
{{- range .Bullets}}
  \item {{esc .}}
{{- end}}
\end{itemize}
{{- end}}
{{- end}}
{{- end}}

\end{document}
`

var resumeTemplate = template.Must(
	template.New("resume").
		Funcs(template.FuncMap{"esc": escapeLaTeX}).
		Parse(resumeTemplateText),
)

// templateInput adds derived fields to ResumeData for the template.
type templateInput struct {
	ResumeData
	ContactLine string
}

// GenerateLaTeXResume deterministically expands structured resume data
// into LaTeX source. Pure function, no AI call. Identical input produces
// byte-identical output.
func (o *ResumeOptimizer) GenerateLaTeXResume(data ResumeData) (string, error) {
	return GenerateLaTeXResume(data)
}

// GenerateLaTeXResume is the underlying template expansion.
func GenerateLaTeXResume(data ResumeData) (string, error) {
	if strings.TrimSpace(data.Name) == "" {
		return "", &TemplateError{Field: "name"}
	}
	if len(data.Sections) == 0 {
		return "", &TemplateError{Field: "sections"}
	}
	for i, sec := range data.Sections {
		if strings.TrimSpace(sec.Title) == "" {
			return "", &TemplateError{Field: fmt.Sprintf("sections[%d].title", i)}
		}
	}

	var contact []string
	for _, part := range []string{data.Email, data.Phone, data.Location} {
		if strings.TrimSpace(part) != "" {
			contact = append(contact, part)
		}
	}

	var buf bytes.Buffer
	err := resumeTemplate.Execute(&buf, templateInput{
		ResumeData:  data,
		ContactLine: strings.Join(contact, " | "),
	})
	if err != nil {
		return "", fmt.Errorf("resume template: %w", err)
	}
	return buf.String(), nil
}
