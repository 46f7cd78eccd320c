package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// contextKeyCSRFToken holds the CSRF token for templates.
const contextKeyCSRFToken = "csrf_token"

// csrfFieldName is the form field gorilla/csrf reads the token from.
const csrfFieldName = "gorilla.csrf.Token"

// CSRFMiddleware protects HTML form submissions. JSON API routes under
// /api/ and safe methods pass through unchecked.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		r := c.Request
		if !secure {
			// Without TLS the Referer check gorilla/csrf applies to HTTPS requests cannot pass
			r = csrf.PlaintextHTTPRequest(r)
		}

		passed := false
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, r)
		if !passed {
			c.Abort()
		}
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	referer := r.Referer()
	if referer != "" {
		separator := "?"
		if strings.Contains(referer, "?") {
			separator = "&"
		}
		http.Redirect(w, r, referer+separator+"error=Session+expired.+Please+try+again.", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Form Expired</title></head>
<body style="font-family: system-ui; max-width: 400px; margin: 100px auto; text-align: center;">
<h1>Form Expired</h1>
<p>The form submission could not be verified.</p>
<p><a href="/">Back to the library</a></p>
</body>
</html>`))
}

// csrfTokenField returns the hidden input carrying the CSRF token, or an
// empty string when CSRF protection is off.
func csrfTokenField(c *gin.Context) template.HTML {
	token := c.GetString(contextKeyCSRFToken)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + csrfFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Pages use inline styles only; images come from this server
		c.Header("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"frame-ancestors 'none'; "+
				"form-action 'self'")

		c.Header("Permissions-Policy",
			"camera=(), "+
				"geolocation=(), "+
				"microphone=(), "+
				"payment=(), "+
				"usb=()")

		c.Next()
	}
}

// UploadLimitMiddleware caps every request body at maxBytes plus room for the
// form fields. Multipart forms are parsed here, ahead of CSRF and the
// handlers, so an oversized upload is rejected before it is spooled to disk.
func UploadLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+uploadFormSlack)

		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			err := c.Request.ParseMultipartForm(maxBytes)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondUploadTooLarge(c, maxBytes)
				return
			}
			// Other parse errors surface again when the handler reads the form
		}
		c.Next()
	}
}

func respondUploadTooLarge(c *gin.Context, maxBytes int64) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: errUploadTooLarge.Error(),
			Code:  codeTooLarge,
		})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.AbortWithStatus(http.StatusRequestEntityTooLarge)
	_, _ = c.Writer.WriteString(`<!DOCTYPE html>
<html>
<head><title>Upload Too Large</title></head>
<body style="font-family: system-ui; max-width: 400px; margin: 100px auto; text-align: center;">
<h1>Upload Too Large</h1>
<p>` + template.HTMLEscapeString(uploadTooLargeMessage(maxBytes)) + `.</p>
<p><a href="/books/new">Back to Add Book</a></p>
</body>
</html>`)
}
