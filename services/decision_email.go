package services

import (
	"fmt"
	"html/template"
	"strings"

	"change-order-api/models"
)

const needsInfoFallbackItem = "Additional details requested."

// BuildDecisionEmail derives the notification subject, plain-text body and
// HTML body from the post-decision record. It is a pure function of the
// record fields: re-deriving it from the same state yields identical
// content, so a transition may safely overwrite whatever was generated
// before.
func BuildDecisionEmail(rec *models.StoredChangeOrder) (subject, text, html string) {
	name := strings.TrimSpace(rec.ContractorName)
	if name == "" {
		name = "Contractor"
	}
	project := strings.TrimSpace(rec.ProjectID)
	if project == "" {
		project = "your project"
	}

	var paragraphs []string
	var bullets []string
	var meta []emailMetaItem

	switch rec.DecisionStatus {
	case models.DecisionApproved:
		amount := 0.0
		if rec.ApprovedAmount != nil {
			amount = *rec.ApprovedAmount
		}
		subject = fmt.Sprintf("Change order approved - %s", project)
		paragraphs = append(paragraphs,
			fmt.Sprintf("Your change order for %s has been approved for $%.2f.", project, amount))
		meta = append(meta, emailMetaItem{Label: "Approved amount", Value: fmt.Sprintf("$%.2f", amount)})
	case models.DecisionDenied:
		subject = fmt.Sprintf("Change order denied - %s", project)
		paragraphs = append(paragraphs,
			fmt.Sprintf("Your change order for %s has been denied.", project))
		meta = append(meta, emailMetaItem{Label: "Reason", Value: string(rec.DenialReasonCode)})
	case models.DecisionNeedsInfo:
		subject = fmt.Sprintf("More information needed - %s", project)
		paragraphs = append(paragraphs,
			fmt.Sprintf("The review team needs more information before deciding on your change order for %s:", project))
		bullets = append(bullets, rec.NeedsInfoChecklist...)
		if len(bullets) == 0 {
			bullets = append(bullets, needsInfoFallbackItem)
		}
	default:
		subject = fmt.Sprintf("Change order update - %s", project)
		paragraphs = append(paragraphs,
			fmt.Sprintf("There is an update on your change order for %s.", project))
	}

	if msg := strings.TrimSpace(rec.ContractorFacingMessage); msg != "" {
		paragraphs = append(paragraphs, msg)
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("Hello %s,\n\n", name))
	for _, p := range paragraphs {
		body.WriteString(p)
		body.WriteString("\n\n")
	}
	for _, b := range bullets {
		body.WriteString("- ")
		body.WriteString(b)
		body.WriteString("\n")
	}
	if len(bullets) > 0 {
		body.WriteString("\n")
	}
	for _, m := range meta {
		body.WriteString(fmt.Sprintf("%s: %s\n", m.Label, m.Value))
	}
	text = strings.TrimRight(body.String(), "\n") + "\n"

	html = buildDecisionEmailHTML(subject, name, paragraphs, bullets, meta)
	return subject, text, html
}

type emailMetaItem struct {
	Label string
	Value string
}

func buildDecisionEmailHTML(subject, recipientName string, paragraphs, bullets []string, meta []emailMetaItem) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf(
		`<p style="margin:0 0 18px 0;line-height:1.7;">%s</p>`,
		template.HTMLEscapeString(fmt.Sprintf("Hello %s,", recipientName))))

	for _, paragraph := range paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		escaped := template.HTMLEscapeString(trimmed)
		escaped = strings.ReplaceAll(strings.ReplaceAll(escaped, "\r\n", "\n"), "\r", "\n")
		escaped = strings.ReplaceAll(escaped, "\n", "<br />")
		content.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;word-break:break-word;">`)
		content.WriteString(escaped)
		content.WriteString(`</p>`)
	}

	if len(bullets) > 0 {
		content.WriteString(`<ul style="margin:0 0 18px 0;padding-left:20px;line-height:1.7;">`)
		for _, bullet := range bullets {
			content.WriteString(`<li style="margin:0 0 6px 0;word-break:break-word;">`)
			content.WriteString(template.HTMLEscapeString(bullet))
			content.WriteString(`</li>`)
		}
		content.WriteString(`</ul>`)
	}

	if len(meta) > 0 {
		content.WriteString(`<div style="margin:0 0 24px 0;">
<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>`)
		for i, row := range meta {
			border := "border-bottom:1px solid #e5e7eb;"
			if i == len(meta)-1 {
				border = ""
			}
			content.WriteString(fmt.Sprintf(`<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%%;%s;word-break:break-word;">%s</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;%s;word-break:break-word;white-space:pre-wrap;">%s</td>
</tr>
`, border, template.HTMLEscapeString(row.Label), border, template.HTMLEscapeString(row.Value)))
		}
		content.WriteString(`</tbody>
</table>
</div>`)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
<div style="text-align:center;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;line-height:1.35;word-break:break-word;">%s</h1>
</div>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;word-break:break-word;">
%s
</div>
</div>
</div>
</body>
</html>`, template.HTMLEscapeString(subject), template.HTMLEscapeString(subject), content.String())
}
