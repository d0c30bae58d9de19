package email

import (
	"bytes"
	"context"
	"text/template"
	"time"
)

const (
	TypeBookingConfirmation = "booking_confirmation"
	TypeBookingCancellation = "booking_cancellation"
	TypeVerificationCode    = "verification_code"
	TypePackageApproved     = "package_approved"
	TypePackageRejected     = "package_rejected"

	dateLayout = "Monday, 2 Jan 2006 15:04"
)

var templates = template.Must(template.New("emails").Parse(`
{{define "booking_confirmation"}}Hi {{.Name}},

Your spot is booked.

Class: {{.ClassName}}
Location: {{.LocationName}}
Time: {{.When}}

One credit has been used. You can cancel from your account page.

- Setalip Pilates
{{end}}
{{define "booking_cancellation"}}Hi {{.Name}},

Your booking for {{.ClassName}} on {{.When}} has been cancelled.
{{if .Refunded}}The credit has been returned to your balance.{{else}}This cancellation was not refunded.{{end}}

- Setalip Pilates
{{end}}
{{define "verification_code"}}Hi {{.Name}},

Your verification code is {{.Code}}. It expires in {{.TTL}}.

If you did not create an account at {{.AppURL}}, ignore this email.

- Setalip Pilates
{{end}}
{{define "package_approved"}}Hi {{.Name}},

Your payment for {{.PackageName}} has been approved.
{{.Credit}} credits were added to your account and are valid until {{.When}}.

- Setalip Pilates
{{end}}
{{define "package_rejected"}}Hi {{.Name}},

We could not confirm your payment for {{.PackageName}} (code {{.Code}}).
Please upload a clearer proof of payment or contact the studio.

- Setalip Pilates
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) queueTemplate(ctx context.Context, jobType, to, name, subject string, data interface{}) error {
	body, err := render(jobType, data)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, Job{Type: jobType, To: to, Name: name, Subject: subject, Body: body})
}

func (s *Service) format(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name, className, locationName string, when time.Time) error {
	return s.queueTemplate(ctx, TypeBookingConfirmation, to, name, "Booking confirmed - "+className, map[string]interface{}{
		"Name":         name,
		"ClassName":    className,
		"LocationName": locationName,
		"When":         s.format(when),
	})
}

func (s *Service) SendBookingCancellation(ctx context.Context, to, name, className string, when time.Time, refunded bool) error {
	return s.queueTemplate(ctx, TypeBookingCancellation, to, name, "Booking cancelled - "+className, map[string]interface{}{
		"Name":      name,
		"ClassName": className,
		"When":      s.format(when),
		"Refunded":  refunded,
	})
}

func (s *Service) SendVerificationCode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	return s.queueTemplate(ctx, TypeVerificationCode, to, name, "Your verification code", map[string]interface{}{
		"Name":   name,
		"Code":   code,
		"TTL":    ttl.String(),
		"AppURL": s.appURL,
	})
}

func (s *Service) SendPackageApproved(ctx context.Context, to, name, packageName string, credit int, expiresAt time.Time) error {
	return s.queueTemplate(ctx, TypePackageApproved, to, name, "Payment approved - "+packageName, map[string]interface{}{
		"Name":        name,
		"PackageName": packageName,
		"Credit":      credit,
		"When":        s.format(expiresAt),
	})
}

func (s *Service) SendPackageRejected(ctx context.Context, to, name, packageName, code string) error {
	return s.queueTemplate(ctx, TypePackageRejected, to, name, "Payment not confirmed - "+packageName, map[string]interface{}{
		"Name":        name,
		"PackageName": packageName,
		"Code":        code,
	})
}
