package certificate

import (
	"fmt"
	"strings"
)

// LogoPlacement selects where the logo sits horizontally
type LogoPlacement string

const (
	LogoLeft   LogoPlacement = "left"
	LogoRight  LogoPlacement = "right"
	LogoCenter LogoPlacement = "center"
)

func (p LogoPlacement) Valid() bool {
	switch p {
	case LogoLeft, LogoRight, LogoCenter:
		return true
	}
	return false
}

// Request is the record a single certificate is rendered from. The JSON
// names follow the roster columns used by the issuing team.
type Request struct {
	CourseTitle    string        `json:"course_title"`
	CourseSubtitle string        `json:"course_sub"`
	RecipientName  string        `json:"name"`
	BodyText       string        `json:"value"`
	Date           string        `json:"date"`
	SignatureImage string        `json:"ceo_signature,omitempty"`
	IssuerName     string        `json:"ceo_name"`
	IssuerTitle    string        `json:"ceo_title"`
	LogoPlacement  LogoPlacement `json:"logo_position,omitempty"`
	Template       string        `json:"template,omitempty"`
}

// Normalize trims every field and fills defaults. The receiver is a copy,
// the caller's request is left untouched.
func (r Request) Normalize() Request {
	r.CourseTitle = strings.TrimSpace(r.CourseTitle)
	r.CourseSubtitle = strings.TrimSpace(r.CourseSubtitle)
	r.RecipientName = strings.TrimSpace(r.RecipientName)
	r.BodyText = strings.TrimSpace(r.BodyText)
	r.Date = strings.TrimSpace(r.Date)
	r.SignatureImage = strings.TrimSpace(r.SignatureImage)
	r.IssuerName = strings.TrimSpace(r.IssuerName)
	r.IssuerTitle = strings.TrimSpace(r.IssuerTitle)
	r.Template = strings.ToLower(strings.TrimSpace(r.Template))

	r.LogoPlacement = LogoPlacement(strings.ToLower(strings.TrimSpace(string(r.LogoPlacement))))
	if r.LogoPlacement == "" {
		r.LogoPlacement = LogoLeft
	}
	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	return r
}

// Validate checks a normalized request.
func (r Request) Validate() error {
	if r.CourseTitle == "" {
		return fmt.Errorf("%w: course_title is required", ErrInvalidRequest)
	}
	if r.RecipientName == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if !r.LogoPlacement.Valid() {
		return fmt.Errorf("%w: unknown logo_position %q", ErrInvalidRequest, r.LogoPlacement)
	}
	if _, ok := TemplateByName(r.Template); !ok {
		return fmt.Errorf("%w: unknown template %q", ErrInvalidRequest, r.Template)
	}
	return nil
}

// Result describes a finished render.
type Result struct {
	Path         string    `json:"path,omitempty"`
	Template     string    `json:"template"`
	LinesDrawn   int       `json:"lines_drawn"`
	LinesDropped int       `json:"lines_dropped"`
	Warnings     []Warning `json:"-"`
	Trace        []Mark    `json:"-"`
}

// WarningMessages flattens the warnings for logs and HTTP headers.
func (r *Result) WarningMessages() []string {
	msgs := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		msgs = append(msgs, w.Error())
	}
	return msgs
}
