package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"elearn/config"
)

// SendEmail sends an HTML email through the configured SMTP account. It is a
// no-op when no sender is configured (local development, tests).
func SendEmail(to []string, subject string, htmlBody string) error {
	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Elearn <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email to %v: %v", to, err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.content h2 { color: #1B3A5C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #5C9DD6; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ELEARN</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Elearn. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendWelcomeEmail greets a freshly registered user
func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome to Elearn! Your account has been created successfully.</p>
		<p>Browse the course catalog, enroll, and start learning.</p>
	`, name)
	SendEmail([]string{email}, "Welcome to Elearn", getEmailTemplate("Welcome Aboard", body))
}

// SendEnrollmentEmail confirms an enrollment
func SendEnrollmentEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Your lessons and exams are available from your dashboard.</div>
	`, name, courseTitle)
	SendEmail([]string{email}, "Enrollment Confirmed", getEmailTemplate("Enrollment Confirmed", body))
}

// SendExamResultEmail notifies a student about a finalized attempt score
func SendExamResultEmail(email, name, examTitle string, score, totalMarks, passingMarks int) {
	result := "did not pass"
	if score >= passingMarks {
		result = "passed"
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your attempt for <strong>%s</strong> has been graded.</p>
		<div class="info-box">Score: %d / %d &mdash; you %s.</div>
	`, name, examTitle, score, totalMarks, result)
	SendEmail([]string{email}, "Exam Result: "+examTitle, getEmailTemplate("Exam Result", body))
}

// SendCourseCompletionEmail congratulates a student on finishing a course
func SendCourseCompletionEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations! You have completed all lessons of <strong>%s</strong>.</p>
	`, name, courseTitle)
	SendEmail([]string{email}, "Course Completed: "+courseTitle, getEmailTemplate("Congratulations", body))
}
