package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/qs3c/crew_server/config"
	"github.com/qs3c/crew_server/internal/model"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// Notice 渲染后的邮件
type Notice struct {
	Subject string
	Body    string
}

var teamKindNames = map[model.TeamKind]string{
	model.TeamStudy:   "研究组",
	model.TeamProject: "项目组",
}

var noticeTemplate = template.Must(template.New("notice").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">{{.Title}}</h2>
        <p>您好，</p>
        <p>{{.Lead}}</p>
        {{if .Applicant}}<p>申请人联系方式：{{.Applicant}}</p>{{end}}
        {{if .Summary}}<div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">{{.Summary}}</div>{{end}}
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`))

// RenderNotice 按通知类型生成邮件标题和正文
func RenderNotice(n model.Notification) (*Notice, error) {
	kindName := teamKindNames[n.TeamKind]
	data := struct {
		Title     string
		Lead      string
		Applicant string
		Summary   string
	}{}

	switch n.Outcome {
	case model.OutcomeApplied:
		data.Title = "新的入组申请"
		data.Lead = fmt.Sprintf("%s「%s」收到了一份新的入组申请，请尽快处理。", kindName, n.TeamName)
		data.Applicant = n.ApplicantContact
		data.Summary = n.Summary
	case model.OutcomeAccepted:
		data.Title = "入组申请已通过"
		data.Lead = fmt.Sprintf("您申请加入的%s「%s」已通过审核，欢迎加入！", kindName, n.TeamName)
	case model.OutcomeRejected:
		data.Title = "入组申请未通过"
		data.Lead = fmt.Sprintf("很遗憾，您申请加入的%s「%s」未通过审核。", kindName, n.TeamName)
	case model.OutcomeAdded:
		data.Title = "您已加入团队"
		data.Lead = fmt.Sprintf("组长已将您添加为%s「%s」的成员。", kindName, n.TeamName)
	default:
		return nil, fmt.Errorf("unknown notification outcome: %q", n.Outcome)
	}

	var body bytes.Buffer
	if err := noticeTemplate.Execute(&body, data); err != nil {
		return nil, err
	}

	return &Notice{
		Subject: data.Title + " - " + n.TeamName,
		Body:    body.String(),
	}, nil
}

// SendMembershipNotice 发送成员变动邮件
func (s *Service) SendMembershipNotice(n model.Notification) error {
	if n.RecipientContact == "" {
		return fmt.Errorf("notification for user %d has no contact", n.RecipientID)
	}

	notice, err := RenderNotice(n)
	if err != nil {
		return err
	}

	return s.sendHTML(n.RecipientContact, notice.Subject, notice.Body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, buildMessage(s.cfg.From, to, subject, body))
}

func buildMessage(from, to, subject, body string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}
