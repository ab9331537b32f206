package email

// Template names an HTML template under templates/.
type Template string

const (
	TemplateWelcome Template = "welcome"
)
