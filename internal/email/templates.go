package email

import (
	"fmt"
	"time"
)

// OTPEmail renders the verification-code message.
func OTPEmail(otp string) (subject, html string) {
	subject = "Verify Your NutriWise Account"
	html = fmt.Sprintf(`
<div style="font-family: 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; background-color: #f9f9f9;">
  <div style="background-color: #ffffff; padding: 40px; border-radius: 8px; border-top: 4px solid #10B981;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #064E3B; margin: 0; font-size: 28px;">NutriWise</h1>
      <p style="color: #6B7280; margin: 5px 0 0; font-size: 14px; text-transform: uppercase; letter-spacing: 1px;">Account Security</p>
    </div>
    <div style="color: #374151; line-height: 1.6; font-size: 16px;">
      <p>Hello,</p>
      <p>We received a request to verify your identity. Use the One-Time Password below to complete it.</p>
      <div style="background-color: #ECFDF5; border: 1px dashed #10B981; border-radius: 6px; padding: 20px; text-align: center; margin: 30px 0;">
        <span style="display: block; font-size: 12px; color: #059669; margin-bottom: 5px; text-transform: uppercase;">Your Verification Code</span>
        <span style="font-family: monospace; font-size: 32px; font-weight: bold; color: #047857; letter-spacing: 8px;">%s</span>
      </div>
      <p style="font-size: 14px; color: #6B7280;">If you did not request this code, please ignore this email.</p>
    </div>
    <div style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #E5E7EB; text-align: center; font-size: 12px; color: #9CA3AF;">
      <p>&copy; %d NutriWise App. This is an automated message, please do not reply.</p>
    </div>
  </div>
</div>`, otp, time.Now().Year())
	return subject, html
}

// ComplaintResolvedEmail renders the complaint-resolution notification.
func ComplaintResolvedEmail(subjectLine string) (subject, html string) {
	subject = "Your NutriWise support request has been resolved"
	html = fmt.Sprintf(`
<div style="font-family: 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #064E3B;">Good news!</h2>
  <p style="color: #374151; font-size: 16px;">Your support request <strong>%s</strong> has been marked as resolved by our team.</p>
  <p style="color: #6B7280; font-size: 14px;">If the issue persists, simply file a new request from the app.</p>
  <p style="color: #9CA3AF; font-size: 12px;">&copy; %d NutriWise App</p>
</div>`, subjectLine, time.Now().Year())
	return subject, html
}
