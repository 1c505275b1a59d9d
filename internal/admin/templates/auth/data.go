package auth

// LoginPageData encapsulates rendering state for the operator login screen.
type LoginPageData struct {
	Email     string
	Message   string
	Error     string
	LoginPath string
	CSRFToken string
}
