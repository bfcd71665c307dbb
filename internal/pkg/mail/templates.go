package mail

const verifyEmailTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Verify your email</h2>
  <p>Thanks for signing up. Click the button below to verify your email address:</p>
  <p style="margin-top:24px">
    <a href="{{.ActionURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Verify email</a>
  </p>
  <p style="color:#999;font-size:12px">If you didn't create this account, you can ignore this email.</p>
</div>
</body>
</html>`

const resetPasswordTpl = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Reset your password</h2>
  <p>We received a request to reset your password. The link below is valid for one hour:</p>
  <p style="margin-top:24px">
    <a href="{{.ActionURL}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Reset password</a>
  </p>
  <p style="color:#999;font-size:12px">If you didn't request a reset, no action is needed.</p>
</div>
</body>
</html>`
