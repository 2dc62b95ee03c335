package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"rkive-api/models"
)

type mailMetaItem struct {
	Label string
	Value string
}

type mailView struct {
	Subject    string
	Paragraphs []string
	Meta       []mailMetaItem
	ButtonText string
	ButtonURL  string
}

var reviewMailTemplate = template.Must(template.New("review").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;">{{.Subject}}</h1>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;">
{{range .Paragraphs}}<p style="margin:0 0 18px 0;white-space:pre-wrap;">{{.}}</p>
{{end}}</div>
{{if .Meta}}<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>
{{range .Meta}}<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%;">{{.Label}}</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;white-space:pre-wrap;">{{.Value}}</td>
</tr>
{{end}}</tbody>
</table>{{end}}
{{if and .ButtonText .ButtonURL}}<div style="text-align:center;margin:24px 0 0 0;">
<a href="{{.ButtonURL}}" style="display:inline-block;padding:12px 28px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">{{.ButtonText}}</a>
</div>{{end}}
</div>
</div>
</body>
</html>`))

func renderMail(view mailView) (string, error) {
	meta := view.Meta[:0:0]
	for _, item := range view.Meta {
		if strings.TrimSpace(item.Label) == "" || strings.TrimSpace(item.Value) == "" {
			continue
		}
		meta = append(meta, item)
	}
	view.Meta = meta

	var buf bytes.Buffer
	if err := reviewMailTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func reviewStatusMail(review *models.SubmissionReview, title, reviewer, documentURL string) (string, string, error) {
	subject := fmt.Sprintf("Your %s document was %s", review.Document.Kind, review.Status)
	paragraphs := []string{
		fmt.Sprintf("The review of your %s document has been updated to %s.", review.Document.Kind, review.Status),
	}
	if comment := strings.TrimSpace(review.Comment); comment != "" {
		paragraphs = append(paragraphs, "Reviewer comment:\n"+comment)
	}

	html, err := renderMail(mailView{
		Subject:    subject,
		Paragraphs: paragraphs,
		Meta: []mailMetaItem{
			{Label: "Research title", Value: title},
			{Label: "Reviewer", Value: reviewer},
			{Label: "Status", Value: string(review.Status)},
		},
		ButtonText: "Open document",
		ButtonURL:  documentURL,
	})
	return subject, html, err
}

func passwordResetMail(fullName, resetURL string, ttl time.Duration) (string, string, error) {
	subject := "Password reset instructions"
	if strings.TrimSpace(fullName) == "" {
		fullName = "user"
	}
	expiresIn := fmt.Sprintf("%d minutes", int(ttl.Minutes()))

	html, err := renderMail(mailView{
		Subject: subject,
		Paragraphs: []string{
			fmt.Sprintf("Dear %s,", fullName),
			"We received a request to reset the password of your account.",
			"Use the button below to choose a new password. If you did not ask for this, you can ignore this email.",
		},
		Meta:       []mailMetaItem{{Label: "Link expires in", Value: expiresIn}},
		ButtonText: "Reset password",
		ButtonURL:  resetURL,
	})
	return subject, html, err
}
